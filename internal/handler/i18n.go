package handler

import "github.com/medimate/internal/locale"

type localizedMessage struct {
	English string
	Thai    string
}

var messageCatalog = map[string]localizedMessage{
	"login.invalid":         {"Invalid username or password", "ชื่อผู้ใช้หรือรหัสผ่านไม่ถูกต้อง"},
	"login.session":         {"Failed to save session", "บันทึกเซสชันไม่สำเร็จ"},
	"login.required":        {"Please log in first", "กรุณาเข้าสู่ระบบก่อน"},
	"logout.ok":             {"Logged out", "ออกจากระบบแล้ว"},
	"request.invalid":       {"Invalid request body", "ข้อมูลที่ส่งมาไม่ถูกต้อง"},
	"medication.notFound":   {"Medication not found", "ไม่พบรายการยา"},
	"medication.name":       {"Please enter the medication name", "กรุณาระบุชื่อยา"},
	"medication.time":       {"Times must use the HH:mm format", "เวลาต้องอยู่ในรูปแบบ HH:mm"},
	"medication.frequency":  {"Unknown frequency", "ความถี่ไม่ถูกต้อง"},
	"medication.saveFailed": {"Failed to save the medication", "บันทึกข้อมูลยาไม่สำเร็จ"},
	"intake.saveFailed":     {"Failed to record the dose", "บันทึกการทานยาไม่สำเร็จ"},
	"badge.failed":          {"Failed to render the badge", "สร้างไอคอนยาไม่สำเร็จ"},
	"ai.inputEmpty":         {"Please describe the medication", "กรุณาพิมพ์รายละเอียดยา"},
	"ai.disabled":           {"AI is not configured. Please fill in the form manually.", "ยังไม่ได้ตั้งค่า AI กรุณากรอกข้อมูลด้วยตนเอง"},
	"ai.malformed":          {"Could not understand the AI response. Please try again.", "ไม่สามารถอ่านผลจาก AI ได้ กรุณาลองใหม่อีกครั้ง"},
	"ai.failed":             {"AI request failed. Please try again.", "เรียกใช้ AI ไม่สำเร็จ กรุณาลองใหม่อีกครั้ง"},
	"ai.keyRequired":        {"Please enter a valid AI API key", "กรุณาระบุ AI API Key ที่ถูกต้อง"},
	"ai.connected":          {"AI connection is working", "เชื่อมต่อ AI สำเร็จ"},
	"settings.loadFailed":   {"Failed to load settings", "โหลดการตั้งค่าไม่สำเร็จ"},
	"settings.saveFailed":   {"Failed to save settings", "บันทึกการตั้งค่าไม่สำเร็จ"},
	"settings.saved":        {"Settings saved", "บันทึกการตั้งค่าแล้ว"},
}

// localizeMessage 根据语言返回提示文案，未知 key 原样返回。
func localizeMessage(language, key string) string {
	msg, ok := messageCatalog[key]
	if !ok {
		return key
	}
	return locale.Pick(language, msg.English, msg.Thai)
}
