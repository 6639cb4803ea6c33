package http

// AuthMessages are the texts of the sign in card. Failure prefixes are
// followed by the error message verbatim.
type AuthMessages struct {
	SignedIn     string
	SignInFailed string
	SignedUp     string
	SignUpFailed string
	SignedOut    string
}

var DefaultAuthMessages = AuthMessages{
	SignedIn:     "เข้าสู่ระบบสำเร็จ",
	SignInFailed: "เข้าสู่ระบบไม่สำเร็จ: ",
	SignedUp:     "สมัครสมาชิกสำเร็จ (เข้าสู่ระบบแล้ว)",
	SignUpFailed: "สมัครไม่สำเร็จ: ",
	SignedOut:    "ออกจากระบบแล้ว",
}
