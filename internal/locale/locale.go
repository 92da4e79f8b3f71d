// Package locale formats dates and visitor-facing notices for the invitation.
package locale

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Notice keys shown to visitors after form actions.
const (
	NoticeSubmitted    = "Your wishes have been sent!"
	NoticeSubmitFailed = "Failed to send your wishes. Please try again."
	NoticeIncomplete   = "Please fill in your name and message."
	NoticeReplyAttend  = "Thank you %s, we have recorded that you will attend. See you on %s!"
	NoticeReplyDecline = "Thank you %s for letting us know. Your prayers mean a lot to us."
	NoticeReplyUnsure  = "Thank you %s, we hope you can make it. Reply HADIR once you are sure."
)

var supported = []language.Tag{language.Indonesian, language.English}

var matcher = language.NewMatcher(supported)

func init() {
	id := language.Indonesian
	_ = message.SetString(id, NoticeSubmitted, "Ucapan berhasil dikirim!")
	_ = message.SetString(id, NoticeSubmitFailed, "Gagal mengirim ucapan. Silakan coba lagi.")
	_ = message.SetString(id, NoticeIncomplete, "Mohon isi nama dan ucapan Anda.")
	_ = message.SetString(id, NoticeReplyAttend, "Terima kasih %s, kehadiran Anda sudah kami catat. Sampai jumpa pada %s!")
	_ = message.SetString(id, NoticeReplyDecline, "Terima kasih %s atas kabarnya. Doa restu Anda sangat berarti bagi kami.")
	_ = message.SetString(id, NoticeReplyUnsure, "Terima kasih %s, semoga Anda bisa hadir. Balas HADIR bila sudah pasti.")
}

var monthNames = map[language.Tag][12]string{
	language.Indonesian: {"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"},
	language.English:    {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
}

var dayNames = map[language.Tag][7]string{
	language.Indonesian: {"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"},
	language.English:    {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
}

// Formatter renders dates and notices for one language and time zone.
type Formatter struct {
	tag     language.Tag
	loc     *time.Location
	printer *message.Printer
}

// New builds a Formatter for a BCP 47 tag such as "id-ID"; unknown tags fall back to Indonesian.
func New(tag string, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	base := language.Indonesian
	if parsed, err := language.Parse(tag); err == nil {
		_, idx, conf := matcher.Match(parsed)
		if conf != language.No {
			base = supported[idx]
		}
	}
	return &Formatter{tag: base, loc: loc, printer: message.NewPrinter(base)}
}

// Tag returns the resolved language.
func (f *Formatter) Tag() language.Tag { return f.tag }

// Location returns the display time zone.
func (f *Formatter) Location() *time.Location { return f.loc }

// DateTime formats t like "28 Desember 2025 pukul 09.00".
func (f *Formatter) DateTime(t time.Time) string {
	t = t.In(f.loc)
	month := monthNames[f.tag][t.Month()-1]
	if f.tag == language.English {
		return fmt.Sprintf("%s %d, %d at %02d:%02d", month, t.Day(), t.Year(), t.Hour(), t.Minute())
	}
	return fmt.Sprintf("%d %s %d pukul %02d.%02d", t.Day(), month, t.Year(), t.Hour(), t.Minute())
}

// LongDate formats t like "Minggu, 28 Desember 2025".
func (f *Formatter) LongDate(t time.Time) string {
	t = t.In(f.loc)
	day := dayNames[f.tag][t.Weekday()]
	month := monthNames[f.tag][t.Month()-1]
	if f.tag == language.English {
		return fmt.Sprintf("%s, %s %d, %d", day, month, t.Day(), t.Year())
	}
	return fmt.Sprintf("%s, %d %s %d", day, t.Day(), month, t.Year())
}

// Notice returns the localized text for key.
func (f *Formatter) Notice(key string, args ...any) string {
	return f.printer.Sprintf(key, args...)
}
