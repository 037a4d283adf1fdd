package models

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserRequest carries a partial profile update. Nil means the field was
// absent from the request body and stays untouched.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UpdatePasswordRequest is the password-change payload.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// CreateTodoListRequest is the list-creation payload. The owner comes from the
// bearer token, not the body.
type CreateTodoListRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

// UpdateTodoListRequest carries a partial list update.
type UpdateTodoListRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
}

// CreateTodoRequest is the todo-creation payload. DueDate uses the YYYY-MM-DD
// date-only format.
type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Completed   bool   `json:"completed"`
	ListID      string `json:"listId"`
}

// UpdateTodoRequest carries a partial todo update. Nil means untouched; a
// DueDate explicitly set to "" clears the stored due date.
type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Completed   *bool   `json:"completed"`
}
