package whatsapp

import (
	"fmt"
	"strings"
)

// Invitation carries what goes into an invitation message.
type Invitation struct {
	GuestName string
	BrideName string
	GroomName string
	Date      string
	Location  string
	Link      string
}

// InvitationMessage renders the invitation text sent to a guest.
func InvitationMessage(inv Invitation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💌 *Undangan Pernikahan*\n\n")
	fmt.Fprintf(&b, "Kepada Yth. %s,\n\n", inv.GuestName)
	fmt.Fprintf(&b, "Dengan penuh sukacita kami mengundang Anda untuk hadir di hari bahagia\n\n")
	fmt.Fprintf(&b, "*%s* & *%s*\n\n", inv.BrideName, inv.GroomName)
	fmt.Fprintf(&b, "📅 %s\n", inv.Date)
	fmt.Fprintf(&b, "📍 %s\n", inv.Location)
	if inv.Link != "" {
		fmt.Fprintf(&b, "\nUndangan lengkap: %s\n", inv.Link)
	}
	b.WriteString("\nMohon konfirmasi kehadiran dengan membalas:\n")
	b.WriteString("✅ *HADIR*\n❌ *TIDAK HADIR*\n🤔 *MASIH RAGU*")
	return b.String()
}
