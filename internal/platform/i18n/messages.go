package i18n

// Message keys.
const (
	MsgInvalidName        = "validation.name"
	MsgInvalidFamilyNames = "validation.familyNames"
	MsgInvalidHealthCard  = "validation.healthCard"
	MsgInvalidNationalID  = "validation.nationalId"
	MsgInvalidEmail       = "validation.email"
	MsgWeakPassword       = "validation.password"

	LabelInformation    = "export.information"
	LabelName           = "export.name"
	LabelFamilyNames    = "export.familyNames"
	LabelBirthDate      = "export.birthDate"
	LabelNationalID     = "export.nationalId"
	LabelHealthCard     = "export.healthCard"
	LabelMedicationPlan = "export.medicationPlan"
	LabelHistory        = "export.history"
	LabelDate           = "export.date"
	LabelTime           = "export.time"
	LabelProfessional   = "export.professional"
	LabelReason         = "export.reason"
	LabelMedication     = "export.medication"
	LabelModality       = "export.modality"
	LabelInPerson       = "export.inPerson"
	LabelRemote         = "export.remote"
	PlaceholderMissing  = "export.missing"
	NotApplicable       = "export.notApplicable"
	FilenameMedication  = "export.filename"
	FilenameHistory     = "export.filenameHistory"
)

var catalogs = map[Locale]map[string]string{
	ES: {
		MsgInvalidName:        "El nombre solo puede contener letras.",
		MsgInvalidFamilyNames: "Introduce los dos apellidos separados por un espacio.",
		MsgInvalidHealthCard:  "Formato incorrecto de tarjeta sanitaria.",
		MsgInvalidNationalID:  "Formato incorrecto de DNI.",
		MsgInvalidEmail:       "El formato del email es incorrecto.",
		MsgWeakPassword:       "La contraseña debe tener al menos 8 caracteres, una mayúscula, una minúscula, un número y un símbolo (@$!%*?&).",

		LabelInformation:    "Información",
		LabelName:           "Nombre",
		LabelFamilyNames:    "Apellidos",
		LabelBirthDate:      "Fecha de Nacimiento",
		LabelNationalID:     "DNI",
		LabelHealthCard:     "Tarjeta sanitaria",
		LabelMedicationPlan: "Plan de Medicación",
		LabelHistory:        "Historial",
		LabelDate:           "Fecha",
		LabelTime:           "Hora",
		LabelProfessional:   "Profesional",
		LabelReason:         "Motivo",
		LabelMedication:     "Medicación",
		LabelModality:       "Modalidad",
		LabelInPerson:       "Presencial",
		LabelRemote:         "Telefónica",
		PlaceholderMissing:  "Sin especificar",
		NotApplicable:       "No precisa",
		FilenameMedication:  "Plan_Medicacion",
		FilenameHistory:     "Historial_Medico",
	},
	CA: {
		MsgInvalidName:        "El nom només pot contenir lletres.",
		MsgInvalidFamilyNames: "Introdueix els dos cognoms separats per un espai.",
		MsgInvalidHealthCard:  "Format incorrecte de targeta sanitària.",
		MsgInvalidNationalID:  "Format incorrecte de DNI.",
		MsgInvalidEmail:       "El format del correu és incorrecte.",
		MsgWeakPassword:       "La contrasenya ha de tenir almenys 8 caràcters, una majúscula, una minúscula, un número i un símbol (@$!%*?&).",

		LabelInformation:    "Informació",
		LabelName:           "Nom",
		LabelFamilyNames:    "Cognoms",
		LabelBirthDate:      "Data de Naixement",
		LabelNationalID:     "DNI",
		LabelHealthCard:     "Targeta sanitària",
		LabelMedicationPlan: "Pla de Medicació",
		LabelHistory:        "Historial",
		LabelDate:           "Data",
		LabelTime:           "Hora",
		LabelProfessional:   "Professional",
		LabelReason:         "Motiu",
		LabelMedication:     "Medicació",
		LabelModality:       "Modalitat",
		LabelInPerson:       "Presencial",
		LabelRemote:         "Telefònica",
		PlaceholderMissing:  "Sense especificar",
		NotApplicable:       "No precisa",
		FilenameMedication:  "Pla_Medicació",
		FilenameHistory:     "Historial_Mèdic",
	},
}
