package models

import "time"

// UserPublicView is what identity operations return to clients. Token is only
// present on register and login responses.
type UserPublicView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	Token     string    `json:"token,omitempty"`
}

// UserStats are the derived counts attached to a public user lookup.
type UserStats struct {
	TodoListCount int `json:"todoListCount"`
	TodoCount     int `json:"todoCount"`
}

// UserWithStats is a public user view annotated with live counts.
type UserWithStats struct {
	UserPublicView
	Stats UserStats `json:"stats"`
}

// UserProfile is the acting user's own profile with full aggregates.
type UserProfile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"createdAt"`
	TodoListCount  int       `json:"todoListCount"`
	TotalTodos     int       `json:"totalTodos"`
	CompletedTodos int       `json:"completedTodos"`
}

// TodoListWithCounts is a list annotated with live todo counts. The counts are
// re-derived on every read, never stored.
type TodoListWithCounts struct {
	TodoList
	TodoCount         int `json:"todoCount"`
	CompletedTodos    int `json:"completedTodos"`
	CompletionPercent int `json:"completionPercent"`
}

// TodoListWithTodos is a list detail view carrying its full todo collection.
type TodoListWithTodos struct {
	TodoList
	Todos     []Todo `json:"todos"`
	TodoCount int    `json:"todoCount"`
}

// DeletedUser identifies the account removed by DeleteUser.
type DeletedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// DeleteUserResult reports what a cascading account deletion removed.
type DeleteUserResult struct {
	DeletedUser      DeletedUser `json:"deletedUser"`
	DeletedTodoLists int         `json:"deletedTodoLists"`
	DeletedTodos     int         `json:"deletedTodos"`
}
