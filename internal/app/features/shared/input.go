// internal/app/features/shared/input.go
package shared

// TitleInput is the body of every board, task and item create or rename.
type TitleInput struct {
	Title string `json:"title"`
}
