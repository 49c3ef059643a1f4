// Package domain defines the persistence models for the platform: AI-driven
// characters and their behavioral attributes, posts, conversation threads and
// messages, subscriptions, and per-user preferences and personas. These types
// are mapped with GORM and form the core data layer of the application.
package domain

import "time"

// NsfwFilter controls how content flagged as NSFW is surfaced to a user.
type NsfwFilter string

const (
	NsfwShow NsfwFilter = "show"
	NsfwBlur NsfwFilter = "blur"
	NsfwHide NsfwFilter = "hide"
)

// Valid reports whether f is one of the supported filter values.
func (f NsfwFilter) Valid() bool {
	switch f {
	case NsfwShow, NsfwBlur, NsfwHide:
		return true
	}
	return false
}

// Sender types for messages.
const (
	SenderUser      = "user"
	SenderCharacter = "character"
)

// Character represents an autonomous AI-driven character on the platform.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the owning user; indexed for retrieval.
//   - Path: unique human-readable identifier used in URLs, distinct from ID.
//   - Public: whether the character is discoverable by other users.
//   - Nsfw: content-rating flag, consulted by listing filters.
//   - SubscriberCount: derived at read time from the subscriptions table;
//     never persisted (gorm:"-").
type Character struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id"     gorm:"type:varchar(64);not null;index:idx_user_characters"`
	Name        string    `json:"name"        gorm:"type:varchar(255);not null"`
	Bio         *string   `json:"bio"         gorm:"type:text"`
	Description *string   `json:"description" gorm:"type:text"`
	Appearance  *string   `json:"appearance"  gorm:"type:text"`
	AvatarURL   *string   `json:"avatar_url"  gorm:"type:text"`
	BannerURL   *string   `json:"banner_url"  gorm:"type:text"`
	Gender      string    `json:"gender"      gorm:"type:varchar(64);not null;default:''"`
	Tags        string    `json:"tags"        gorm:"type:text;not null;default:''"`
	Path        string    `json:"path"        gorm:"type:varchar(128);not null;uniqueIndex:ux_character_path"`
	Public      bool      `json:"public"      gorm:"not null;default:false;index"`
	Nsfw        bool      `json:"nsfw"        gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// SubscriberCount is a read-side projection folded in by the repository
	// after the row query returns. It is never written back to the store.
	SubscriberCount int64 `json:"subscriber_count" gorm:"-"`
}

// TableName returns the database table name for Character.
func (Character) TableName() string { return "characters" }

// CharacterDraft is the partial create/update variant of Character. It
// excludes server-assigned fields (id, timestamps) and inferred ownership
// (user_id). A nil field is omitted from the write; a non-nil pointer to the
// zero value explicitly clears the column.
type CharacterDraft struct {
	Name        *string `json:"name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Description *string `json:"description,omitempty"`
	Appearance  *string `json:"appearance,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	BannerURL   *string `json:"banner_url,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	Path        *string `json:"path,omitempty"`
	Public      *bool   `json:"public,omitempty"`
	Nsfw        *bool   `json:"nsfw,omitempty"`
}

// Changes returns the column->value map of the fields actually present in
// the draft. Omitted (nil) fields are left untouched by the update.
func (d CharacterDraft) Changes() map[string]any {
	m := map[string]any{}
	if d.Name != nil {
		m["name"] = *d.Name
	}
	if d.Bio != nil {
		m["bio"] = *d.Bio
	}
	if d.Description != nil {
		m["description"] = *d.Description
	}
	if d.Appearance != nil {
		m["appearance"] = *d.Appearance
	}
	if d.AvatarURL != nil {
		m["avatar_url"] = *d.AvatarURL
	}
	if d.BannerURL != nil {
		m["banner_url"] = *d.BannerURL
	}
	if d.Gender != nil {
		m["gender"] = *d.Gender
	}
	if d.Tags != nil {
		m["tags"] = *d.Tags
	}
	if d.Path != nil {
		m["path"] = *d.Path
	}
	if d.Public != nil {
		m["public"] = *d.Public
	}
	if d.Nsfw != nil {
		m["nsfw"] = *d.Nsfw
	}
	return m
}

// Post is a public piece of content authored by a character.
type Post struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	CharacterID string    `json:"character_id" gorm:"type:char(36);not null;index:idx_character_posts"`
	Content     string    `json:"content"      gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Character Character `json:"-" gorm:"foreignKey:CharacterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string { return "posts" }

// PostDraft is the partial update variant of Post.
type PostDraft struct {
	Content *string `json:"content,omitempty"`
}

// Changes returns the column->value map of the fields present in the draft.
func (d PostDraft) Changes() map[string]any {
	m := map[string]any{}
	if d.Content != nil {
		m["content"] = *d.Content
	}
	return m
}

// Thread is a direct-message conversation between a user and a character.
// The owning user is inferred from the caller's authenticated identity at
// creation time, never taken from the payload.
type Thread struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id"      gorm:"type:varchar(64);not null;index:idx_user_threads"`
	CharacterID string    `json:"character_id" gorm:"type:char(36);not null;index:idx_character_threads"`
	Title       string    `json:"title"        gorm:"type:varchar(255);not null;default:''"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Character Character `json:"-" gorm:"foreignKey:CharacterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Thread.
func (Thread) TableName() string { return "threads" }

// Message is a single utterance within a thread, authored either by the
// user or by the character. Messages are append-only: there is no update or
// delete path.
type Message struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	ThreadID   string    `json:"thread_id"   gorm:"type:char(36);not null;index:idx_thread_msgs,priority:1"`
	SenderType string    `json:"sender_type" gorm:"type:varchar(16);not null;check:sender_type IN ('user','character')"`
	Content    string    `json:"content"     gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"  gorm:"index:idx_thread_msgs,priority:2"`

	Thread Thread `json:"-" gorm:"foreignKey:ThreadID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Subscription links a user to a character they follow. Existence of the
// row is the whole state: created on subscribe, deleted on unsubscribe,
// never updated.
type Subscription struct {
	UserID      string    `json:"user_id"      gorm:"type:varchar(64);primaryKey"`
	CharacterID string    `json:"character_id" gorm:"type:char(36);primaryKey;index"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "character_subscriptions" }

// UserPreferences is the stored 1:1 preferences row for a user. The UserID
// column is a lookup key only; it is stripped from the value handed to
// callers (see Preferences).
type UserPreferences struct {
	UserID     string     `json:"user_id"     gorm:"type:varchar(64);primaryKey"`
	NsfwFilter NsfwFilter `json:"nsfw_filter" gorm:"type:varchar(8);not null;default:'hide';check:nsfw_filter IN ('show','blur','hide')"`
}

// TableName returns the database table name for UserPreferences.
func (UserPreferences) TableName() string { return "user_preferences" }

// Preferences is the caller-facing preferences value, without the lookup key.
type Preferences struct {
	NsfwFilter NsfwFilter `json:"nsfw_filter"`
}

// UserPersona is a user-authored identity used when talking to characters.
// It shares the descriptive shape of Character minus the visibility and
// content-rating flags. The avatar is not a stored column: it is resolved
// per read from the signed-URL store path
// "{user_id}/persona_avatars/{persona_id}.jpg".
type UserPersona struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id"     gorm:"type:varchar(64);not null;index:idx_user_personas"`
	Name        *string   `json:"name"        gorm:"type:varchar(255)"`
	Bio         *string   `json:"bio"         gorm:"type:text"`
	Description *string   `json:"description" gorm:"type:text"`
	Appearance  *string   `json:"appearance"  gorm:"type:text"`
	Gender      *string   `json:"gender"      gorm:"type:varchar(64)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// AvatarURL carries the time-limited signed URL resolved at read time.
	AvatarURL *string `json:"avatar_url,omitempty" gorm:"-"`
}

// TableName returns the database table name for UserPersona.
func (UserPersona) TableName() string { return "user_personas" }

// PersonaDraft is the partial create/update variant of UserPersona,
// excluding id, ownership, and timestamps.
type PersonaDraft struct {
	Name        *string `json:"name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Description *string `json:"description,omitempty"`
	Appearance  *string `json:"appearance,omitempty"`
	Gender      *string `json:"gender,omitempty"`
}

// Changes returns the column->value map of the fields present in the draft.
func (d PersonaDraft) Changes() map[string]any {
	m := map[string]any{}
	if d.Name != nil {
		m["name"] = *d.Name
	}
	if d.Bio != nil {
		m["bio"] = *d.Bio
	}
	if d.Description != nil {
		m["description"] = *d.Description
	}
	if d.Appearance != nil {
		m["appearance"] = *d.Appearance
	}
	if d.Gender != nil {
		m["gender"] = *d.Gender
	}
	return m
}
