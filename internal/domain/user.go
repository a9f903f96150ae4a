package domain

// SupabaseUser represents a user from Supabase Auth
type SupabaseUser struct {
	ID           string
	Email        string
	UserMetadata map[string]interface{}
	CreatedAt    string
	UpdatedAt    string
}

// Profile represents a user's application profile row.
// The plan field drives entitlement classification; everything else is
// display data for the client.
type Profile struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email,omitempty"`
	FullName       string `json:"full_name,omitempty"`
	PlanID         string `json:"plan_id"`
	NativeLanguage string `json:"native_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// ProfileRepository defines persistence for user profiles.
type ProfileRepository interface {
	GetByUserID(userID string, token string) (*Profile, error)
}
