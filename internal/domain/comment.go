package domain

import "time"

// CommentVisibility classifies a comment as readable by the reporting
// department or internal-only.
type CommentVisibility string

const (
	CommentVisibilityPublic   CommentVisibility = "public"
	CommentVisibilityInternal CommentVisibility = "internal"
)

// ValidCommentVisibility reports membership in the closed visibility set.
func ValidCommentVisibility(v CommentVisibility) bool {
	return v == CommentVisibilityPublic || v == CommentVisibilityInternal
}

// Comment is an append-only entry in a ticket thread. Comments are never
// edited or deleted.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	Visibility CommentVisibility
	CreatedAt  time.Time
}
