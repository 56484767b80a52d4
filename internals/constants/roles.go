package constants

import "fmt"

// Role yang dikenal sistem marking
const (
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
	RoleAdmin    = "admin"
)

// Template pesan error role
const (
	ErrOnlyLecturersCanAccess = "❌ Hanya lecturer atau admin yang boleh mengakses fitur %s."
	ErrOnlyAdminsCanAccess    = "❌ Hanya admin yang boleh mengakses fitur %s."
)

// Fungsi helper untuk menghasilkan pesan error dinamis
func RoleErrorLecturer(feature string) string {
	return fmt.Sprintf(ErrOnlyLecturersCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleStudent,
		RoleLecturer,
		RoleAdmin,
	}

	LecturerAndAbove = []string{
		RoleLecturer,
		RoleAdmin,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)
