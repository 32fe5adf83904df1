package model

// Directory records for the people the scheduler coordinates. These are
// deliberately thin: the scheduler only needs identity, names for
// notification messages, and credentials for login.

type Doctor struct {
	Base
	Name           string `db:"name" json:"name"`
	Specialization string `db:"specialization" json:"specialization"`
	Email          string `db:"email" json:"email"`
	PasswordHash   string `db:"password_hash" json:"-"`
}

type Patient struct {
	Base
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	Phone        string `db:"phone" json:"phone,omitempty"`
	PasswordHash string `db:"password_hash" json:"-"`
}

type Staff struct {
	Base
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
}

type RegisterPatientRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"max=30"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role" binding:"required,oneof=PATIENT DOCTOR STAFF"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Actor Actor  `json:"actor"`
}
