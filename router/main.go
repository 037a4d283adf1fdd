package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskhive/go-taskhive/handlers"
	"github.com/taskhive/go-taskhive/middleware"
)

func SetupRoutes(app *fiber.App) {
	app.Get("/health", handlers.HandleHealthCheck)

	users := app.Group("/api/users")
	users.Post("/register", handlers.RegisterHandler)
	users.Post("/login", handlers.LoginHandler)
	users.Post("/logout", handlers.LogoutHandler)
	users.Get("/profile", middleware.JWTMiddleware, handlers.HandleGetProfile)
	users.Put("/:id/password", middleware.JWTMiddleware, handlers.HandleUpdatePassword)
	users.Get("/:id", handlers.HandleGetUser)
	users.Put("/:id", middleware.JWTMiddleware, handlers.HandleUpdateUser)
	users.Delete("/:id", middleware.JWTMiddleware, handlers.HandleDeleteUser)

	lists := app.Group("/api/todoList", middleware.JWTMiddleware)
	lists.Post("/", handlers.HandleCreateTodoList)
	lists.Get("/user/:userId", handlers.HandleGetUserTodoLists)
	lists.Get("/:id", handlers.HandleGetTodoList)
	lists.Put("/:id", handlers.HandleUpdateTodoList)
	lists.Delete("/:id", handlers.HandleDeleteTodoList)

	todos := app.Group("/api/todo", middleware.JWTMiddleware)
	todos.Post("/", handlers.HandleCreateTodo)
	todos.Get("/list/:listId", handlers.HandleGetListTodos)
	todos.Delete("/list/:listId", handlers.HandleDeleteListTodos)
	todos.Get("/:id", handlers.HandleGetTodo)
	todos.Put("/:id", handlers.HandleUpdateTodo)
	todos.Delete("/:id", handlers.HandleDeleteTodo)
}
