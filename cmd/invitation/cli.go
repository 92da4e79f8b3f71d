package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"wedding-invitation/internal/locale"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/rsvp"
)

type guestRegistry interface {
	Add(ctx context.Context, name, phoneNumber string) (models.Guest, error)
	List(ctx context.Context) ([]models.Guest, error)
	Link(g models.Guest) string
}

type rsvpBoard interface {
	LoadAll(ctx context.Context) ([]models.Submission, error)
	Paginate(n int) rsvp.Page
	Current() rsvp.Page
}

type inviter interface {
	SendInvitation(ctx context.Context, guest models.Guest, link string) error
}

type cli struct {
	scanner   *bufio.Scanner
	out       io.Writer
	registry  guestRegistry
	board     rsvpBoard
	inviter   inviter
	formatter *locale.Formatter
}

// newCLI builds the operator console. inv may be nil when WhatsApp is off.
func newCLI(in io.Reader, out io.Writer, registry guestRegistry, board rsvpBoard, inv inviter, formatter *locale.Formatter) *cli {
	return &cli{
		scanner:   bufio.NewScanner(in),
		out:       out,
		registry:  registry,
		board:     board,
		inviter:   inv,
		formatter: formatter,
	}
}

// Run reads commands until exit, EOF or ctx is done.
func (c *cli) Run(ctx context.Context) {
	for ctx.Err() == nil {
		fmt.Fprintln(c.out, "\nCommands:")
		fmt.Fprintln(c.out, "  1. Add guest")
		fmt.Fprintln(c.out, "  2. Send invitation")
		fmt.Fprintln(c.out, "  3. View all guests")
		fmt.Fprintln(c.out, "  4. View RSVP board")
		fmt.Fprintln(c.out, "  5. Reload RSVP board")
		fmt.Fprintln(c.out, "  6. Exit")
		fmt.Fprint(c.out, "\nEnter command (1-6): ")

		command, ok := c.readLine()
		if !ok {
			return
		}

		switch command {
		case "1":
			c.addGuest(ctx)
		case "2":
			c.sendInvitation(ctx)
		case "3":
			c.viewAllGuests(ctx)
		case "4":
			c.browseBoard()
		case "5":
			c.reloadBoard(ctx)
		case "6":
			fmt.Fprintln(c.out, "Exiting...")
			return
		default:
			fmt.Fprintln(c.out, "Invalid command. Please try again.")
		}
	}
}

func (c *cli) readLine() (string, bool) {
	if !c.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.scanner.Text()), true
}

func (c *cli) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	return c.readLine()
}

func (c *cli) addGuest(ctx context.Context) {
	name, ok := c.prompt("Enter guest name: ")
	if !ok {
		return
	}
	phone, ok := c.prompt("Enter phone number (optional, e.g. 0812 3456 7890): ")
	if !ok {
		return
	}

	g, err := c.registry.Add(ctx, name, phone)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error adding guest: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "✅ Guest added: %s\n   Link: %s\n", g.Name, c.registry.Link(g))

	if c.inviter == nil || g.PhoneNumber == "" {
		return
	}
	answer, ok := c.prompt("Send WhatsApp invitation now? (y/n): ")
	if ok && strings.EqualFold(answer, "y") {
		c.invite(ctx, g)
	}
}

func (c *cli) sendInvitation(ctx context.Context) {
	if c.inviter == nil {
		fmt.Fprintln(c.out, "WhatsApp is disabled. Set WHATSAPP_ENABLED=true to send invitations.")
		return
	}
	slug, ok := c.prompt("Enter guest slug: ")
	if !ok {
		return
	}

	guests, err := c.registry.List(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error listing guests: %v\n", err)
		return
	}
	for _, g := range guests {
		if g.Slug == slug {
			c.invite(ctx, g)
			return
		}
	}
	fmt.Fprintf(c.out, "No guest with slug %q.\n", slug)
}

func (c *cli) invite(ctx context.Context, g models.Guest) {
	fmt.Fprintf(c.out, "\nSending invitation to %s (%s)...\n", g.Name, g.PhoneNumber)
	if err := c.inviter.SendInvitation(ctx, g, c.registry.Link(g)); err != nil {
		fmt.Fprintf(c.out, "❌ Error sending invitation: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "✅ Invitation sent successfully!")
}

func (c *cli) viewAllGuests(ctx context.Context) {
	guests, err := c.registry.List(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error listing guests: %v\n", err)
		return
	}
	if len(guests) == 0 {
		fmt.Fprintln(c.out, "\nNo guests found.")
		return
	}

	fmt.Fprintf(c.out, "\n📋 All Guests (%d total):\n", len(guests))
	fmt.Fprintln(c.out, strings.Repeat("-", 60))
	for _, g := range guests {
		fmt.Fprintf(c.out, "Name: %s\n", g.Name)
		if g.PhoneNumber != "" {
			fmt.Fprintf(c.out, "Phone: %s\n", g.PhoneNumber)
		}
		fmt.Fprintf(c.out, "Link: %s\n", c.registry.Link(g))
		fmt.Fprintln(c.out, strings.Repeat("-", 60))
	}
}

func (c *cli) browseBoard() {
	page := c.board.Current()
	for {
		c.printPage(page)
		if page.TotalPages <= 1 {
			return
		}
		cmd, ok := c.prompt("[n]ext, [p]revious, [q]uit: ")
		if !ok {
			return
		}
		switch strings.ToLower(cmd) {
		case "n":
			page = c.board.Paginate(page.CurrentPage + 1)
		case "p":
			page = c.board.Paginate(page.CurrentPage - 1)
		default:
			return
		}
	}
}

func (c *cli) printPage(p rsvp.Page) {
	if len(p.Items) == 0 {
		fmt.Fprintln(c.out, "\nNo submissions yet.")
		return
	}
	fmt.Fprintf(c.out, "\n📋 RSVP board, page %d of %d:\n", p.CurrentPage, p.TotalPages)
	fmt.Fprintln(c.out, strings.Repeat("-", 60))
	for _, s := range p.Items {
		fmt.Fprintf(c.out, "%s (%s)\n", s.Name, s.Status)
		fmt.Fprintf(c.out, "%s\n", s.Message)
		fmt.Fprintf(c.out, "%s\n", c.formatter.DateTime(s.CreatedAt))
		fmt.Fprintln(c.out, strings.Repeat("-", 60))
	}
}

func (c *cli) reloadBoard(ctx context.Context) {
	list, err := c.board.LoadAll(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error loading submissions: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "✅ Loaded %d submissions.\n", len(list))
}
