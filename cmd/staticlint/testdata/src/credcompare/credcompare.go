package credcompare

type user struct {
	Name         string
	PasswordHash string
}

type tokenKind int

func check(u user, password, name, sessionToken, expected string, kind tokenKind) bool {
	if password == "" {
		return false
	}
	if u.PasswordHash == password { // want "PasswordHash compared with ==: use a constant-time comparison"
		return true
	}
	if expected != sessionToken { // want "sessionToken compared with !=: use a constant-time comparison"
		return false
	}
	if kind == tokenKind(1) {
		return true
	}
	return u.Name == name
}
