package planner

import "github.com/dalemusser/taskplanner/internal/domain/models"

// BoardView is the client shape of a board.
type BoardView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ItemView is the client shape of a checklist item.
type ItemView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ItemChecked bool   `json:"itemChecked"`
}

// TaskView is the client shape of a task with its live items embedded.
// Item mutations answer with the parent TaskView.
type TaskView struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	Items     []ItemView `json:"items"`
}

func BoardViewOf(b models.Board) BoardView {
	return BoardView{ID: b.ID.Hex(), Title: b.Title}
}

func itemViewOf(it models.Item) ItemView {
	return ItemView{ID: it.ID.Hex(), Title: it.Title, ItemChecked: it.ItemChecked}
}

func taskViewOf(t models.Task, items []models.Item) TaskView {
	v := TaskView{
		ID:        t.ID.Hex(),
		Title:     t.Title,
		Completed: t.Completed,
		Items:     make([]ItemView, 0, len(items)),
	}
	for _, it := range items {
		v.Items = append(v.Items, itemViewOf(it))
	}
	return v
}

// BoardChange reports a board mutation: the stored board and the member
// who made the change.
type BoardChange struct {
	Actor models.User
	Board models.Board
}

// View returns the client shape of the changed board.
func (c BoardChange) View() BoardView { return BoardViewOf(c.Board) }
