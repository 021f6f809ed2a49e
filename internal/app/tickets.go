package app

import (
	"errors"
	"fmt"
	"math"
	"time"

	"bigtwo/internal/domain"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// ErrInvalidTicket is returned for tickets that are malformed, expired, or signed with another secret.
var ErrInvalidTicket = errors.New("invalid seat ticket")

// DefaultTicketTTL bounds how long a seat ticket stays usable.
const DefaultTicketTTL = 12 * time.Hour

// SeatTicket binds a bearer to one seat of one game. It assigns seats; it does not authenticate users.
type SeatTicket struct {
	GameID    string
	Seat      int
	ExpiresAt time.Time
}

// TicketIssuer signs and verifies HS256 seat tickets.
type TicketIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTicketIssuer(secret, issuer string, ttl time.Duration) (*TicketIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("ticket secret is required")
	}
	if ttl == 0 {
		ttl = DefaultTicketTTL
	}
	return &TicketIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// Issue signs a ticket for seat in gameID.
func (s *TicketIssuer) Issue(gameID string, seat int) (string, error) {
	if gameID == "" {
		return "", fmt.Errorf("game id is required")
	}
	if seat < 0 || seat >= domain.NumSeats {
		return "", fmt.Errorf("seat %d out of range", seat)
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  gameID,
		"seat": seat,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
		"jti":  uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// IssueAll signs one ticket per seat.
func (s *TicketIssuer) IssueAll(gameID string) ([]string, error) {
	out := make([]string, domain.NumSeats)
	for seat := range out {
		tok, err := s.Issue(gameID, seat)
		if err != nil {
			return nil, err
		}
		out[seat] = tok
	}
	return out, nil
}

// Verify checks the signature and expiry and returns the seat binding.
func (s *TicketIssuer) Verify(tokenString string) (SeatTicket, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return SeatTicket{}, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return SeatTicket{}, ErrInvalidTicket
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return SeatTicket{}, fmt.Errorf("%w: issuer %q", ErrInvalidTicket, iss)
	}

	gameID, _ := claims["sub"].(string)
	seat, seatOK := claims["seat"].(float64)
	exp, expOK := claims["exp"].(float64)
	if gameID == "" || !seatOK || !expOK {
		return SeatTicket{}, fmt.Errorf("%w: missing claims", ErrInvalidTicket)
	}
	if seat < 0 || seat >= domain.NumSeats || seat != math.Trunc(seat) {
		return SeatTicket{}, fmt.Errorf("%w: seat %v", ErrInvalidTicket, seat)
	}
	return SeatTicket{GameID: gameID, Seat: int(seat), ExpiresAt: time.Unix(int64(exp), 0)}, nil
}
