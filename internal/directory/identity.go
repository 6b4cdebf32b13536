package directory

import (
	"errors"
	"fmt"
	"strings"
)

// Identity is the validated boundary type for the directory's user payload.
// It is ephemeral: fetched, consumed during one login, never stored verbatim.
//
// Wire shape (the directory speaks Spanish):
//
//	{
//	  "id": 42, "nombre": "Ana", "apellido": "Lopez",
//	  "usuario": "ana", "password": "<md5 hex>",
//	  "empleado": {
//	    "email": "...",
//	    "departamento": {"nombre": "GERENCIA"},
//	    "sucursalActiva": {"clave": "MATRIZ"}
//	  }
//	}
type Identity struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"nombre"`
	LastName   string    `json:"apellido"`
	Username   string    `json:"usuario"`
	Digest     string    `json:"password"`
	Employment *Employee `json:"empleado"`
}

type Employee struct {
	Email        string  `json:"email"`
	Department   *Named  `json:"departamento"`
	ActiveBranch *Keyed  `json:"sucursalActiva"`
}

type Named struct {
	Name string `json:"nombre"`
}

type Keyed struct {
	Key string `json:"clave"`
}

// ErrMalformedIdentity marks a directory payload that decoded but is missing
// required fields. Matched with errors.Is.
var ErrMalformedIdentity = errors.New("malformed directory identity")

// Validate fails fast when required fields are absent, so role logic never
// sees a half-empty identity.
func (id *Identity) Validate() error {
	switch {
	case id.ID <= 0:
		return fmt.Errorf("%w: missing id", ErrMalformedIdentity)
	case id.Username == "":
		return fmt.Errorf("%w: missing usuario", ErrMalformedIdentity)
	case id.Digest == "":
		return fmt.Errorf("%w: missing password digest", ErrMalformedIdentity)
	}
	return nil
}

// DisplayName joins the given and family names the way the old frontend did.
func (id *Identity) DisplayName() string {
	return strings.TrimSpace(id.FirstName + " " + id.LastName)
}

// Email returns the employment email, or "" when no employment record exists.
func (id *Identity) Email() string {
	if id.Employment == nil {
		return ""
	}
	return id.Employment.Email
}

// DepartmentName returns the employment department name, or "".
func (id *Identity) DepartmentName() string {
	if id.Employment == nil || id.Employment.Department == nil {
		return ""
	}
	return id.Employment.Department.Name
}

// ActiveBranchKey returns the active-branch code, or "".
func (id *Identity) ActiveBranchKey() string {
	if id.Employment == nil || id.Employment.ActiveBranch == nil {
		return ""
	}
	return id.Employment.ActiveBranch.Key
}
