// Package domain defines the persistence models for users, conversations,
// files and feedback tickets. These types are mapped with GORM and form the
// core data layer of the support backend.
package domain

import (
	"time"

	"github.com/tbourn/support-chat-backend/internal/history"
)

// Role names.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Evaluation values a user can leave on a bot response.
const (
	EvaluationLike    = "jaime"
	EvaluationDislike = "jenaimepas"
)

// Ticket statuses.
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

// DefaultModelType tags conversations created without an explicit model.
const DefaultModelType = "gpt2"

// Role is a named permission set attached to users.
type Role struct {
	ID        uint      `json:"id"   gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(32);not null;uniqueIndex"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName returns the database table name for Role.
func (Role) TableName() string { return "roles" }

// User is an account holder. The password hash is never serialized.
//
// Every user carries at least one role; "client" is attached at
// registration, and lazily at login for accounts created without one.
type User struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex"`
	Password  string    `json:"-"          gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Roles []Role `json:"roles,omitempty" gorm:"many2many:user_roles;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// RoleNames lists the names of the loaded roles.
func (u *User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

// HasRole reports whether the loaded roles include name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// AccessToken is an opaque bearer credential. Only the SHA-256 of the
// secret is stored; the plain value is handed to the client once.
type AccessToken struct {
	ID         uint       `json:"id"           gorm:"primaryKey"`
	UserID     uint       `json:"user_id"      gorm:"not null;index"`
	Name       string     `json:"name"         gorm:"type:varchar(64);not null;default:'auth_token'"`
	TokenHash  string     `json:"-"            gorm:"type:char(64);not null;uniqueIndex"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for AccessToken.
func (AccessToken) TableName() string { return "access_tokens" }

// File is an uploaded document and the text extracted from it.
type File struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	UserID      uint      `json:"user_id"      gorm:"not null;index"`
	FilePath    string    `json:"file_path"    gorm:"type:varchar(512);not null"`
	FileType    string    `json:"file_type"    gorm:"type:varchar(16);not null"`
	ContentText string    `json:"content_text" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for File.
func (File) TableName() string { return "files" }

// Conversation is a persisted exchange between a user and a model.
// MessageUser and MessageBot are index-aligned and always the same length.
//
// Timestamp tracks the last activity and moves on every append, while
// CreatedAt stays fixed.
type Conversation struct {
	ID          uint             `json:"id"           gorm:"primaryKey"`
	UserID      uint             `json:"user_id"      gorm:"not null;index:idx_user_conversations,priority:1"`
	FileID      *uint            `json:"file_id"      gorm:"index"`
	Title       *string          `json:"title"        gorm:"type:varchar(255)"`
	MessageUser history.Messages `json:"message_user" gorm:"type:text;not null"`
	MessageBot  history.Messages `json:"message_bot"  gorm:"type:text;not null"`
	ModelType   string           `json:"model_type"   gorm:"type:varchar(64);not null;default:'gpt2'"`
	IsSaved     bool             `json:"is_saved"     gorm:"not null;default:false"`
	Timestamp   *time.Time       `json:"timestamp"`
	CreatedAt   time.Time        `json:"created_at"   gorm:"index:idx_user_conversations,priority:2"`
	UpdatedAt   time.Time        `json:"updated_at"`

	User    User     `json:"-"                 gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	File    *File    `json:"-"                 gorm:"foreignKey:FileID;constraint:OnDelete:SET NULL"`
	Tickets []Ticket `json:"tickets,omitempty" gorm:"foreignKey:ConversationID"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// Ticket is a user's evaluation of a conversation, optionally annotated by
// an admin. At most one ticket exists per (user, conversation) pair.
type Ticket struct {
	ID               uint      `json:"id"                gorm:"primaryKey"`
	UserID           uint      `json:"user_id"           gorm:"not null;index;uniqueIndex:ux_ticket_user_conversation,priority:1"`
	ConversationID   *uint     `json:"conversation_id"   gorm:"index;uniqueIndex:ux_ticket_user_conversation,priority:2"`
	Question         string    `json:"question"          gorm:"type:text;not null;default:''"`
	Response         string    `json:"response"          gorm:"type:text;not null;default:''"`
	Evaluation       *string   `json:"evaluation"        gorm:"type:varchar(16);check:evaluation IS NULL OR evaluation IN ('jaime','jenaimepas')"`
	Status           string    `json:"status"            gorm:"type:varchar(16);not null;default:'open';check:status IN ('open','closed')"`
	CommentaireAdmin *string   `json:"commentaire_admin" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"        gorm:"index"`
	UpdatedAt        time.Time `json:"updated_at"`

	User         *User         `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Conversation *Conversation `json:"-"              gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for Ticket.
func (Ticket) TableName() string { return "tickets" }

// HasAdminComment reports whether an admin annotated the ticket.
func (t *Ticket) HasAdminComment() bool {
	return t.CommentaireAdmin != nil && *t.CommentaireAdmin != ""
}

// IsValidEvaluation reports whether v is an accepted evaluation value.
func IsValidEvaluation(v string) bool {
	return v == EvaluationLike || v == EvaluationDislike
}

// IsValidStatus reports whether s is an accepted ticket status.
func IsValidStatus(s string) bool {
	return s == TicketOpen || s == TicketClosed
}
