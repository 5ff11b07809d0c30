package model

import "regexp"

// Durable field keys. The four values are written together by a single store call.
const (
	KeyCompanyCode        = "company_code"
	KeyEmployeeCode       = "employee_code"
	KeyPasswordCiphertext = "password_ciphertext"
	KeyPasswordNonce      = "password_nonce"
)

// KeySessionKey is the session store key holding the raw vault key bytes.
const KeySessionKey = "session_key"

// DurableKeys lists every field the vault persists in the durable store.
var DurableKeys = []string{
	KeyCompanyCode,
	KeyEmployeeCode,
	KeyPasswordCiphertext,
	KeyPasswordNonce,
}

var (
	companyCodePattern  = regexp.MustCompile(`^\d{1,5}$`)
	employeeCodePattern = regexp.MustCompile(`^\d{1,10}$`)
)

// Credentials is the full login material. It is assembled by the vault after a
// successful decrypt and is never persisted as a unit.
type Credentials struct {
	CompanyCode  string `json:"companyCode"`
	EmployeeCode string `json:"employeeCode"`
	Password     string `json:"password"`
}

// Identifiers returns the plaintext half of the credentials.
func (c Credentials) Identifiers() Identifiers {
	return Identifiers{CompanyCode: c.CompanyCode, EmployeeCode: c.EmployeeCode}
}

// Validate checks code formats and that the password is not empty.
func (c Credentials) Validate() error {
	if err := c.Identifiers().Validate(); err != nil {
		return err
	}
	if c.Password == "" {
		return &ValidationError{Field: "password", Err: ErrEmptyPassword}
	}
	return nil
}

// Identifiers is the company/employee code pair stored in plaintext.
type Identifiers struct {
	CompanyCode  string `json:"companyCode"`
	EmployeeCode string `json:"employeeCode"`
}

// Validate checks that both codes are short digit strings.
func (i Identifiers) Validate() error {
	if !companyCodePattern.MatchString(i.CompanyCode) {
		return &ValidationError{Field: "companyCode", Err: ErrInvalidCompanyCode}
	}
	if !employeeCodePattern.MatchString(i.EmployeeCode) {
		return &ValidationError{Field: "employeeCode", Err: ErrInvalidEmployeeCode}
	}
	return nil
}

// EncryptedBlob is a sealed password together with the nonce it was sealed under.
type EncryptedBlob struct {
	Ciphertext []byte
	Nonce      []byte
}

// VaultState is the observed availability of the stored password.
type VaultState string

const (
	// StateNoCredential means nothing was saved, or the vault was cleared.
	StateNoCredential VaultState = "NO_CREDENTIAL"
	// StateAvailable means the password can be decrypted with the resident key.
	StateAvailable VaultState = "AVAILABLE"
	// StateLocked means ciphertext is stored but the key that sealed it is gone.
	StateLocked VaultState = "LOCKED"
)
