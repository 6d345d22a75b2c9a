// Package messages is the configuration table of fixed Hebrew reply
// templates sent to users: clarifying questions keyed by the missing slot and
// confirmations for completed actions.
//
// Nothing here is generated — reply wording beyond these templates is a
// non-goal.
package messages

import (
	"fmt"

	"github.com/daniel5812/brain-dump-server/internal/intent"
)

const (
	questionDate = "📅 הבנתי את השעה, אבל לא את היום. מתי זה אמור לקרות? (לדוגמה: מחר / ביום ראשון הקרוב / 1.1)"
	questionTime = "🕒 הבנתי את היום, אבל חסרה לי שעה. באיזו שעה זה? (לדוגמה: 12 בצהריים / 7 בערב / 08:30)"
	questionBoth = "🤔 כדי לבצע את זה אני צריך עוד קצת מידע: זה משימה, פגישה או רעיון? ואם זו פגישה - תן גם יום ושעה."

	// DateRetry is sent when a reply to the date question carried no
	// recognisable date.
	DateRetry = "📅 לא הצלחתי להבין את היום. אפשר לנסח אחרת?"

	// Misunderstood is the safety-net reply when no plan could be formed.
	Misunderstood = "🤖 לא הצלחתי להבין, אפשר לנסח מחדש?"

	// TodoistNotConfigured walks a user through connecting Todoist.
	TodoistNotConfigured = `📋 Todoist עדיין לא מחובר.

כדי לחבר:
1. פתח את Todoist באתר או באפליקציה
2. לך להגדרות → Integrations → API Token
3. העתק את הטוקן ושלח אותו למנהל המערכת

⏳ החיבור ייקח כמה דקות`

	// CalendarNotConfigured walks a user through connecting Google Calendar.
	CalendarNotConfigured = `📅 Google Calendar עדיין לא מחובר.

כדי לחבר:
1. שלח למנהל המערכת את כתובת המייל של ה-Google שלך
2. הוא ישתף איתך את היומן

⏳ החיבור ייקח כמה דקות`
)

// QuestionFor returns the clarifying question for the given missing slot.
// It is used both when a follow-up is first opened and when a reply could not
// be parsed and the same question is asked again.
func QuestionFor(m intent.Missing) string {
	switch m {
	case intent.NeedDate:
		return questionDate
	case intent.NeedTime:
		return questionTime
	default:
		return questionBoth
	}
}

// TaskCreated confirms a created task, naming the deadline when one exists.
func TaskCreated(title, due string) string {
	if due == "" {
		return fmt.Sprintf("📋 יצרתי משימה: %s", title)
	}
	return fmt.Sprintf("📋 יצרתי משימה: %s (עד %s)", title, due)
}

// MeetingScheduled confirms a scheduled meeting.
func MeetingScheduled(title string) string {
	return fmt.Sprintf("📅 פגישה נקבעה: %s", title)
}

// IdeaSaved confirms a captured idea.
func IdeaSaved(title string) string {
	return fmt.Sprintf("💡 שמרתי רעיון: %s", title)
}
