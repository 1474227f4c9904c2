package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ds124wfegd/railway-reservation/internal/entity"
	"github.com/ds124wfegd/railway-reservation/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	choiceAddTrain = iota + 1
	choiceViewTrains
	choiceBookTicket
	choiceCancelTicket
	choiceViewTickets
	choiceExit
)

const menu = `
Railway Reservation System
1. Add Train
2. View Trains
3. Book Ticket
4. Cancel Ticket
5. View All Tickets
6. Exit
`

// errInputClosed ends the session when the input runs out mid-prompt.
var errInputClosed = errors.New("input closed")

// Console is the interactive menu over the train and reservation services.
type Console struct {
	trains       service.TrainService
	reservations service.ReservationService
	in           *bufio.Scanner
	out          io.Writer
	log          logrus.FieldLogger
}

func New(trains service.TrainService, reservations service.ReservationService, in io.Reader, out io.Writer, log logrus.FieldLogger) *Console {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Console{
		trains:       trains,
		reservations: reservations,
		in:           bufio.NewScanner(in),
		out:          out,
		log:          log,
	}
}

// Run shows the menu until the user exits, the input ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(c.out, menu)
		choice, err := c.readChoice()
		if err != nil {
			return c.finish(err)
		}

		switch choice {
		case choiceAddTrain:
			err = c.addTrain(ctx)
		case choiceViewTrains:
			c.viewTrains(ctx)
		case choiceBookTicket:
			err = c.bookTicket(ctx)
		case choiceCancelTicket:
			err = c.cancelTicket(ctx)
		case choiceViewTickets:
			c.viewTickets(ctx)
		case choiceExit:
			fmt.Fprintln(c.out, "Exiting...")
			return nil
		}
		if err != nil {
			return c.finish(err)
		}
	}
}

func (c *Console) finish(err error) error {
	if errors.Is(err, errInputClosed) {
		fmt.Fprintln(c.out)
		return nil
	}
	return err
}

func (c *Console) readChoice() (int, error) {
	fmt.Fprint(c.out, "Enter your choice: ")
	for {
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= choiceAddTrain && n <= choiceExit {
			return n, nil
		}
		fmt.Fprint(c.out, "Invalid choice. Please enter a number between 1 and 6: ")
	}
}

func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) promptText(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	for {
		line, err := c.readLine()
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
		fmt.Fprint(c.out, "Input cannot be empty. Try again: ")
	}
}

func (c *Console) promptInt(prompt, retry string, min int) (int, error) {
	fmt.Fprint(c.out, prompt)
	for {
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= min {
			return n, nil
		}
		fmt.Fprint(c.out, retry)
	}
}

func (c *Console) addTrain(ctx context.Context) error {
	number, err := c.promptInt("Enter Train Number: ", "Invalid input. Please enter a valid train number: ", 1)
	if err != nil {
		return err
	}
	name, err := c.promptText("Enter Train Name: ")
	if err != nil {
		return err
	}
	seats, err := c.promptInt("Enter Available Seats: ", "Invalid input. Please enter a non-negative number of seats: ", 0)
	if err != nil {
		return err
	}

	if _, err := c.trains.AddTrain(ctx, &service.AddTrainRequest{Number: number, Name: name, Seats: seats}); err != nil {
		c.report(err)
		return nil
	}
	fmt.Fprintln(c.out, "Train added successfully.")
	return nil
}

func (c *Console) viewTrains(ctx context.Context) {
	tw := tabwriter.NewWriter(c.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Train Number\tTrain Name\tAvailable Seats\tBooked")
	fmt.Fprintln(tw, "------------\t----------\t---------------\t------")
	for train := range c.trains.ListTrains(ctx) {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", train.Number, train.Name, train.AvailableSeats, train.BookedSeats())
	}
	tw.Flush()
}

func (c *Console) bookTicket(ctx context.Context) error {
	number, err := c.promptInt("Enter Train Number: ", "Invalid input. Please enter a valid train number: ", 1)
	if err != nil {
		return err
	}

	// Check the train before asking for passenger details.
	train, err := c.trains.GetTrain(ctx, number)
	if err != nil {
		c.report(err)
		return nil
	}
	if train.AvailableSeats == 0 {
		fmt.Fprintf(c.out, "Seat not available on Train %s.\n", train.Name)
		return nil
	}

	name, err := c.promptText("Enter Passenger Name: ")
	if err != nil {
		return err
	}
	age, err := c.promptInt("Enter Passenger Age: ", "Invalid input. Please enter a valid age: ", 0)
	if err != nil {
		return err
	}

	booking, err := c.reservations.BookTicket(ctx, &service.BookTicketRequest{
		TrainNumber:   number,
		PassengerName: name,
		PassengerAge:  age,
	})
	if err != nil {
		c.report(err)
		return nil
	}

	fmt.Fprintf(c.out, "Ticket booked successfully for %s (Age: %d) on Train %s. Booking ID: %d\n",
		booking.PassengerName, booking.PassengerAge, booking.TrainName, booking.ID)
	return nil
}

func (c *Console) cancelTicket(ctx context.Context) error {
	name, err := c.promptText("Enter Passenger Name to Cancel Ticket: ")
	if err != nil {
		return err
	}
	age, err := c.promptInt("Enter Passenger Age: ", "Invalid input. Please enter a valid age: ", 0)
	if err != nil {
		return err
	}
	booking, err := c.reservations.FindActiveBooking(ctx, name, age)
	if err != nil {
		c.reportCancel(err, name, age)
		return nil
	}

	reason, err := c.promptText("Enter reason for ticket cancellation: ")
	if err != nil {
		return err
	}

	cancellation, err := c.reservations.CancelTicket(ctx, &service.CancelTicketRequest{
		BookingID: booking.ID,
		Reason:    reason,
	})
	if err != nil {
		c.reportCancel(err, name, age)
		return nil
	}

	fmt.Fprintf(c.out, "Ticket canceled successfully for %s. Reason: %s\n", name, cancellation.Booking.CancellationReason)
	if cancellation.SeatRestored {
		fmt.Fprintf(c.out, "Seat availability updated for Train %s\n", cancellation.Booking.TrainName)
	} else {
		fmt.Fprintf(c.out, "Warning: %s\n", cancellation.Warning)
	}
	return nil
}

func (c *Console) reportCancel(err error, name string, age int) {
	switch {
	case errors.Is(err, entity.ErrBookingNotFound):
		fmt.Fprintf(c.out, "No booking found for %s with age %d.\n", name, age)
	case errors.Is(err, entity.ErrAlreadyCancelled):
		fmt.Fprintf(c.out, "Ticket for %s with age %d is already cancelled.\n", name, age)
	default:
		c.report(err)
	}
}

func (c *Console) viewTickets(ctx context.Context) {
	tw := tabwriter.NewWriter(c.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Booking ID\tTrain Number\tPassenger Name\tAge\tStatus\tCancellation Reason")
	fmt.Fprintln(tw, "----------\t------------\t--------------\t---\t------\t-------------------")
	for booking := range c.reservations.ListBookings(ctx) {
		status, reason := "Active", "N/A"
		if !booking.IsActive() {
			status, reason = "Cancelled", booking.CancellationReason
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\n",
			booking.ID, booking.TrainNumber, booking.PassengerName, booking.PassengerAge, status, reason)
	}
	tw.Flush()
}

// report prints a user-facing message for err. Unexpected errors are also logged.
func (c *Console) report(err error) {
	switch {
	case errors.Is(err, entity.ErrTrainNotFound):
		fmt.Fprintln(c.out, "Train not found. Please check the train number.")
	case errors.Is(err, entity.ErrSeatUnavailable):
		fmt.Fprintln(c.out, "Seat not available on this train.")
	case errors.Is(err, entity.ErrDuplicateTrain):
		fmt.Fprintln(c.out, "A train with this number already exists.")
	case service.IsClientError(err):
		fmt.Fprintf(c.out, "Request rejected: %v\n", err)
	default:
		c.log.WithError(err).Error("Console operation failed")
		fmt.Fprintln(c.out, "Something went wrong, please try again.")
	}
}
