package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// UnmarshalJSON rejects values outside the enum. An empty string decodes as Other.
func (g *Gender) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*g = GenderOther
		return nil
	}
	if !Gender(s).Valid() {
		return fmt.Errorf("invalid gender %q", s)
	}
	*g = Gender(s)
	return nil
}

type Education string

const (
	EducationBachelor Education = "Bachelor"
	EducationMaster   Education = "Master"
	EducationDoctor   Education = "Doctor"
	EducationOther    Education = "Other"
)

func (e Education) Valid() bool {
	switch e {
	case EducationBachelor, EducationMaster, EducationDoctor, EducationOther:
		return true
	}
	return false
}

// UnmarshalJSON rejects values outside the enum. An empty string decodes as Other.
func (e *Education) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*e = EducationOther
		return nil
	}
	if !Education(s).Valid() {
		return fmt.Errorf("invalid education %q", s)
	}
	*e = Education(s)
	return nil
}

// Profile holds the user-editable part of an account.
type Profile struct {
	Gender      Gender    `bson:"gender" json:"gender"`
	Education   Education `bson:"education" json:"education"`
	Description string    `bson:"description" json:"description"`
	Avatar      string    `bson:"avatar" json:"avatar"`

	School string `bson:"school" json:"school"`
	Major  string `bson:"major" json:"major"`
	Phone  string `bson:"phone" json:"phone"`
	Email  string `bson:"email" json:"email"`

	// References to other entities; order carries no meaning.
	Following    []string `bson:"following" json:"following"`
	Participated []string `bson:"participated" json:"participated"`
	Published    []string `bson:"published" json:"published"`
	Collection   []string `bson:"collection" json:"collection"`
}

// Normalize fills zero enums with Other and nil lists with empty ones,
// so stored documents never contain null arrays.
func (p *Profile) Normalize() {
	if p.Gender == "" {
		p.Gender = GenderOther
	}
	if p.Education == "" {
		p.Education = EducationOther
	}
	for _, list := range []*[]string{&p.Following, &p.Participated, &p.Published, &p.Collection} {
		if *list == nil {
			*list = []string{}
		}
	}
}

// User is one account document in the users collection.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Username string             `bson:"username" json:"username"`
	Password string             `bson:"password" json:"password"`

	Profile `bson:",inline"`

	RegisterTime   int64  `bson:"register_time" json:"register_time"`
	Token          string `bson:"token" json:"token"`
	ValidTokenTime int64  `bson:"valid_token_time" json:"valid_token_time"`
	IsDeprecated   bool   `bson:"is_deprecated" json:"is_deprecated"`
}

// NewUser builds a fresh account with default profile fields.
func NewUser(req CreateUserRequest, now time.Time) *User {
	user := &User{
		ID:           primitive.NewObjectID(),
		Username:     req.Username,
		Password:     req.Password,
		RegisterTime: now.Unix(),
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	user.Normalize()
	return user
}

// Sanitized returns a copy safe to send to clients: password and token are blanked.
func (u *User) Sanitized() *User {
	out := *u
	out.Password = ""
	out.Token = ""
	return &out
}

// HasLiveToken reports whether the stored token is set and not yet expired at now.
func (u *User) HasLiveToken(now time.Time) bool {
	return u.Token != "" && u.ValidTokenTime >= now.Unix()
}
