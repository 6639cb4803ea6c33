package session

import "fmt"

type Level string

const (
	LevelNone  Level = ""
	LevelInfo  Level = "info"
	LevelOK    Level = "ok"
	LevelWarn  Level = "warn"
	LevelError Level = "err"
)

// Message is the status line shown above the ledger.
type Message struct {
	Text  string
	Level Level
}

// Messages holds the status texts. Prefix fields are followed by the
// collaborator's error message verbatim.
type Messages struct {
	Loading       string // formatted with the period key
	Updated       string // formatted with the record count
	StreamFailed  string
	InvalidAmount string
	Saved         string
	SaveFailed    string
	Deleted       string
	DeleteFailed  string
	SignedOut     string
}

var DefaultMessages = Messages{
	Loading:       "กำลังโหลดข้อมูลเดือน %s...",
	Updated:       "อัปเดตแล้ว (%d รายการ)",
	StreamFailed:  "โหลดไม่สำเร็จ: ",
	InvalidAmount: "กรุณากรอกจำนวนเงินให้ถูกต้อง (มากกว่า 0)",
	Saved:         "บันทึกแล้ว",
	SaveFailed:    "บันทึกไม่สำเร็จ: ",
	Deleted:       "ลบแล้ว",
	DeleteFailed:  "ลบไม่สำเร็จ: ",
	SignedOut:     "ยังไม่ได้ล็อกอิน",
}

func (m Messages) loading(key string) Message {
	return Message{Text: fmt.Sprintf(m.Loading, key), Level: LevelInfo}
}

func (m Messages) updated(n int) Message {
	return Message{Text: fmt.Sprintf(m.Updated, n), Level: LevelOK}
}

func (m Messages) failure(prefix string, err error, level Level) Message {
	return Message{Text: prefix + err.Error(), Level: level}
}
