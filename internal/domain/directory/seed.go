package directory

import "time"

var seededAt = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

// Seed returns the static staff roster provided at process start.
func Seed() []*Employee {
	return []*Employee{
		// Doctors
		{ID: "EMPD001", FullName: "Danielle Johnson", Email: "doctor1@hospital.local", Password: "Doc@123", Role: RoleDoctor, Department: "General Medicine", Designation: "MBBS, MD", Phone: "3321819600", IsActive: true, CreatedAt: seededAt},
		{ID: "EMPD002", FullName: "William Johnson", Email: "doctor2@hospital.local", Password: "Doc@123", Role: RoleDoctor, Department: "Neurology", Designation: "MBBS, DNB", Phone: "8637940265", IsActive: true, CreatedAt: seededAt},
		{ID: "EMPD003", FullName: "Susan Rogers", Email: "doctor3@hospital.local", Password: "Doc@123", Role: RoleDoctor, Department: "Orthopedics", Designation: "MBBS, MS", Phone: "6155940781", IsActive: true, CreatedAt: seededAt},
		{ID: "EMPD004", FullName: "Kelly Fuller", Email: "doctor4@hospital.local", Password: "Doc@123", Role: RoleDoctor, Department: "Cardiology", Designation: "MBBS, MD", Phone: "9310341316", IsActive: true, CreatedAt: seededAt},
		{ID: "EMPD005", FullName: "Francisco Kelly", Email: "doctor5@hospital.local", Password: "Doc@123", Role: RoleDoctor, Department: "General Medicine", Designation: "MBBS", Phone: "1928327648", IsActive: true, CreatedAt: seededAt},

		// Nurses
		{ID: "EMPN001", FullName: "Taylor Ibarra", Email: "nurse1@hospital.local", Password: "Nurse@123", Role: RoleNurse, Department: "OT", Designation: "ICU Nurse", Phone: "5427849808", IsActive: true, CreatedAt: seededAt},
		{ID: "EMPN002", FullName: "Deborah Preston", Email: "nurse2@hospital.local", Password: "Nurse@123", Role: RoleNurse, Department: "Ward A", Designation: "Staff Nurse", Phone: "4493534874", IsActive: true, CreatedAt: seededAt},
		{ID: "EMPN003", FullName: "Sandra Williams", Email: "nurse3@hospital.local", Password: "Nurse@123", Role: RoleNurse, Department: "Ward A", Designation: "ICU Nurse", Phone: "2427868011", IsActive: true, CreatedAt: seededAt},
		{ID: "EMPN004", FullName: "Mary Aguilar", Email: "nurse4@hospital.local", Password: "Nurse@123", Role: RoleNurse, Department: "Emergency", Designation: "Staff Nurse", Phone: "6204505331", IsActive: true, CreatedAt: seededAt},

		// Admin
		{ID: "EMPA001", FullName: "Richard Sanchez", Email: "admin1@hospital.local", Password: "Admin@123", Role: RoleAdmin, Department: "Administration", Designation: "Operations Admin", Phone: "7885685574", IsActive: true, CreatedAt: seededAt},
		{ID: "EMPA002", FullName: "David Lee", Email: "admin2@hospital.local", Password: "Admin@123", Role: RoleAdmin, Department: "Administration", Designation: "Front Desk Admin", Phone: "8233749894", IsActive: true, CreatedAt: seededAt},

		// Pharmacy
		{ID: "EMPP001", FullName: "Veronica Torres", Email: "pharmacy1@hospital.local", Password: "Pharm@123", Role: RolePharmacy, Department: "Pharmacy", Designation: "Senior Pharmacist", Phone: "9133412328", IsActive: true, CreatedAt: seededAt},
		{ID: "EMPP002", FullName: "Ricky Norris", Email: "pharmacy2@hospital.local", Password: "Pharm@123", Role: RolePharmacy, Department: "Pharmacy", Designation: "Pharmacist", Phone: "4034471349", IsActive: true, CreatedAt: seededAt},

		// Diagnostic
		{ID: "EMPDG001", FullName: "Michael Cook", Email: "diagnostic1@hospital.local", Password: "Diag@123", Role: RoleDiagnostic, Department: "Radiology", Designation: "Senior Lab Technician", Phone: "2567468071", IsActive: true, CreatedAt: seededAt},
		{ID: "EMPDG002", FullName: "Darrell Barton", Email: "diagnostic2@hospital.local", Password: "Diag@123", Role: RoleDiagnostic, Department: "Diagnostics", Designation: "Senior Lab Technician", Phone: "8760385977", IsActive: true, CreatedAt: seededAt},
	}
}
