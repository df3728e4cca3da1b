package profile

// Profile holds the identity attributes kept alongside the sign-in account,
// one document per user id in the users collection.
type Profile struct {
	Name        string `json:"nombre"`
	FamilyNames string `json:"apellidos"`
	BirthDate   string `json:"fechaNacimiento"`
	HealthCard  string `json:"tarjetaSanitaria"`
	NationalID  string `json:"dni"`
}

const (
	keyName        = "nombre"
	keyFamilyNames = "apellidos"
	keyBirthDate   = "fechaNacimiento"
	keyHealthCard  = "tarjetaSanitaria"
	keyNationalID  = "dni"
	keyUpdatedAt   = "updatedAt"
)
