package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"parking-facility/internal/stats"
	"parking-facility/internal/telemetry"
)

// Shell drives an Attendant from line-oriented commands.
type Shell struct {
	attendant *Attendant
	telemetry *telemetry.Provider
	scanner   *bufio.Scanner
	out       io.Writer
}

func NewShell(attendant *Attendant, tp *telemetry.Provider, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		attendant: attendant,
		telemetry: tp,
		scanner:   bufio.NewScanner(in),
		out:       out,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for s.scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))
		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("command.name", command))

	switch command {
	case "park":
		s.handlePark(ctx, parts)
	case "leave":
		s.handleLeave(ctx, parts)
	case "ticket":
		s.handleTicket(parts)
	case "tickets":
		s.handleTickets()
	case "status":
		s.handleStatus()
	case "find":
		s.handleFind(parts)
	case "stats":
		s.handleStats(ctx)
	default:
		trace.SpanFromContext(ctx).AddEvent("unknown_command")
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	if len(parts) != 4 {
		s.printf("Usage: park <registration_number> <color> <motorcycle|car|truck>\n")
		return
	}

	kind, err := ParseVehicleKind(parts[3])
	if err != nil {
		s.printf("Invalid vehicle kind: %s\n", parts[3])
		return
	}

	ticket, err := s.attendant.Park(ctx, NewVehicle(parts[1], parts[2], kind))
	if err != nil {
		if IsUnavailable(err) {
			s.printf("Sorry, no %s spot available\n", kind)
			return
		}
		s.printf("Error: %s\n", err.Error())
		return
	}

	allocation := ticket.Allocation()
	s.printf("Ticket %s: level %d spot %d (%s)\n", ticket.ID(), allocation.Level, allocation.Spot, allocation.Type)
}

func (s *Shell) handleLeave(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.printf("Usage: leave <ticket_id>\n")
		return
	}

	ticket, err := s.attendant.Leave(ctx, parts[1])
	if err != nil && !errors.Is(err, ErrInconsistent) {
		s.printf("Error: %s\n", err.Error())
		return
	}

	price, _ := ticket.Price()
	allocation := ticket.Allocation()
	if err != nil {
		s.printf("Charged %.2f but spot %d/%d could not be released: %s\n", price, allocation.Level, allocation.Spot, err.Error())
		return
	}
	s.printf("Level %d spot %d is free. Total charge: %.2f\n", allocation.Level, allocation.Spot, price)
}

func (s *Shell) handleTicket(parts []string) {
	if len(parts) != 2 {
		s.printf("Usage: ticket <ticket_id>\n")
		return
	}

	ticket, ok := s.attendant.Ticket(parts[1])
	if !ok {
		s.printf("Not found\n")
		return
	}
	s.printTicket(ticket.Info())
}

func (s *Shell) handleTickets() {
	tickets := s.attendant.Active()
	if len(tickets) == 0 {
		s.printf("No active tickets\n")
		return
	}
	for _, ticket := range tickets {
		s.printTicket(ticket.Info())
	}
}

func (s *Shell) handleStatus() {
	occupied := 0
	for _, level := range s.attendant.Status() {
		s.printf("Level %d: %d/%d occupied", level.Level, len(level.Occupied), level.Capacity)
		for _, t := range SpotTypes() {
			s.printf("\t%s %d free", t, level.Free[t])
		}
		s.printf("\n")
		for _, slot := range level.Occupied {
			s.printf("  %d\t%s\t%s\t%s\n", slot.Number, slot.Type, slot.Vehicle.RegistrationNumber, slot.Vehicle.Color)
		}
		occupied += len(level.Occupied)
	}
	if occupied == 0 {
		s.printf("Parking facility is empty\n")
	}
}

func (s *Shell) handleFind(parts []string) {
	if len(parts) != 2 {
		s.printf("Usage: find <registration_number>\n")
		return
	}

	allocation, err := s.attendant.Locate(parts[1])
	if err != nil {
		s.printf("Not found\n")
		return
	}
	s.printf("Level %d spot %d\n", allocation.Level, allocation.Spot)
}

func (s *Shell) handleStats(ctx context.Context) {
	summary, err := s.attendant.Stats(ctx)
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}
	s.printf("admitted %d, unavailable %d, departed %d, revenue %.2f\n",
		summary.Totals[stats.OutcomeAdmitted], summary.Totals[stats.OutcomeUnavailable], summary.Totals[stats.OutcomeDeparted], summary.Revenue)
}

func (s *Shell) printTicket(info TicketInfo) {
	s.printf("%s\t%s\tlevel %d spot %d\t%s\tentered %s", info.ID, info.Registration, info.Level, info.Spot, info.State, info.EntryTime.Format(time.DateTime))
	if info.Price != nil {
		s.printf("\tcharged %.2f", *info.Price)
	}
	s.printf("\n")
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
