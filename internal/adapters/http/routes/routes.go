package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bookstack/internal/adapters/http/handlers"
	"bookstack/internal/adapters/persistence/repositories"
	"bookstack/internal/config"
	"bookstack/internal/core/services"
)

// Setup configures all routes for the application and returns the borrow
// service so the caller can hook up the overdue sweep
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.BorrowService {
	// Initialize repositories
	bookRepo := repositories.NewBookRepository(db)
	userRepo := repositories.NewUserRepository(db)
	borrowRepo := repositories.NewBorrowRepository(db)

	// Initialize services
	bookService := services.NewBookService(db, bookRepo)
	userService := services.NewUserService(db, userRepo)
	borrowService := services.NewBorrowService(db, borrowRepo, bookRepo, userRepo, cfg.Lending.LoanPeriodDays)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	bookHandler := handlers.NewBookHandler(bookService)
	userHandler := handlers.NewUserHandler(userService)
	borrowHandler := handlers.NewBorrowHandler(borrowService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Books
	books := apiV1.Group("/books")
	books.Post("/", bookHandler.Create)
	books.Get("/", bookHandler.List)
	books.Get("/:id", bookHandler.GetByID)
	books.Put("/:id", bookHandler.Update)
	books.Patch("/:id/availability", bookHandler.UpdateAvailability)
	books.Delete("/:id", bookHandler.Delete)
	books.Post("/:id/restore", bookHandler.Restore)
	books.Delete("/:id/permanent", bookHandler.HardDelete)

	// Users
	users := apiV1.Group("/users")
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Patch("/:id/role", userHandler.UpdateRole)
	users.Patch("/:id/password", userHandler.UpdatePassword)
	users.Delete("/:id", userHandler.Delete)
	users.Post("/:id/restore", userHandler.Restore)
	users.Delete("/:id/permanent", userHandler.HardDelete)

	// Borrows
	borrows := apiV1.Group("/borrows")
	borrows.Post("/", borrowHandler.Borrow)
	borrows.Get("/", borrowHandler.List)
	borrows.Get("/overdue", borrowHandler.Overdue)
	borrows.Post("/scan-overdue", borrowHandler.ScanOverdue)
	borrows.Get("/:id", borrowHandler.GetByID)
	borrows.Post("/:id/return", borrowHandler.Return)
	borrows.Delete("/:id", borrowHandler.Delete)

	return borrowService
}
