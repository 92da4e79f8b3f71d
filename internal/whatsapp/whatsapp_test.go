package whatsapp

import (
	"strings"
	"testing"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

func TestNormalizePhoneNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, cc, want string
	}{
		{in: "0812-3456-7890", cc: "62", want: "6281234567890"},
		{in: "+62 812 3456 7890", cc: "62", want: "6281234567890"},
		{in: "62 0812 3456 7890", cc: "62", want: "6281234567890"},
		{in: "(0812) 3456 7890", cc: "", want: "6281234567890"},
		{in: "0044 20 7946 0958", cc: "62", want: "442079460958"},
		{in: "054-123-4567", cc: "+972", want: "972541234567"},
		{in: "abc", cc: "62", want: ""},
	}
	for _, tt := range tests {
		if got := NormalizePhoneNumber(tt.in, tt.cc); got != tt.want {
			t.Errorf("NormalizePhoneNumber(%q, %q) = %q, want %q", tt.in, tt.cc, got, tt.want)
		}
	}

	if got := Normalizer("62")("0812 1111 2222"); got != "6281211112222" {
		t.Errorf("Normalizer = %q", got)
	}
}

func TestInvitationMessage(t *testing.T) {
	t.Parallel()

	msg := InvitationMessage(Invitation{
		GuestName: "Budi Santoso",
		BrideName: "Ayu",
		GroomName: "Raka",
		Date:      "Minggu, 28 Desember 2025",
		Location:  "Gedung Serbaguna",
		Link:      "https://example.com/?to=budi-santoso",
	})
	for _, want := range []string{"Budi Santoso", "*Ayu* & *Raka*", "Minggu, 28 Desember 2025", "Gedung Serbaguna", "?to=budi-santoso", "HADIR"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	if strings.Contains(InvitationMessage(Invitation{GuestName: "X"}), "Undangan lengkap") {
		t.Error("link line rendered without a link")
	}
}

func TestMessageText(t *testing.T) {
	t.Parallel()

	plain := "  Hadir  "
	extended := "tidak hadir"
	tests := []struct {
		name string
		msg  *events.Message
		want string
	}{
		{name: "nil", msg: nil, want: ""},
		{name: "empty", msg: &events.Message{}, want: ""},
		{name: "conversation", msg: &events.Message{Message: &waE2E.Message{Conversation: &plain}}, want: "Hadir"},
		{
			name: "extended",
			msg: &events.Message{Message: &waE2E.Message{
				ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: &extended},
			}},
			want: "tidak hadir",
		},
	}
	for _, tt := range tests {
		if got := MessageText(tt.msg); got != tt.want {
			t.Errorf("%s: MessageText = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSenderPhone(t *testing.T) {
	t.Parallel()

	msg := &events.Message{}
	msg.Info.Sender = types.NewJID("6281234567890", types.DefaultUserServer)
	if got := SenderPhone(msg); got != "6281234567890" {
		t.Fatalf("SenderPhone = %q", got)
	}
}
