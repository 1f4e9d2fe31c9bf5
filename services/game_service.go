package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/NicoBaldowine/pickleplay/listing"
	"github.com/NicoBaldowine/pickleplay/location"
	"github.com/NicoBaldowine/pickleplay/models"
	"github.com/NicoBaldowine/pickleplay/realtime"
	"github.com/NicoBaldowine/pickleplay/repositories"
	"github.com/NicoBaldowine/pickleplay/storage"
	"github.com/NicoBaldowine/pickleplay/wizard"
)

const (
	ReasonCreated = "created"
	ReasonDeleted = "deleted"
	ReasonExpired = "expired"
)

// Publisher fans listing changes out to connected clients.
type Publisher interface {
	PublishGamesChanged(ev realtime.GamesChanged)
}

type GameService interface {
	CreateGame(ctx context.Context, game models.NewGame) (int, error)
	GetUserSchedules(ctx context.Context, userID int) ([]models.GameWithPlayers, error)
	// GetAvailableGamesWithDetails lists upcoming open games by other
	// players, earliest first. A nil fix leaves distances unset.
	GetAvailableGamesWithDetails(ctx context.Context, userID int, fix *location.Fix) ([]models.GameWithPlayers, error)
	SearchGames(ctx context.Context, userID int, filters listing.GameFilters, fix *location.Fix) ([]models.GameWithPlayers, error)
	DeleteSchedule(ctx context.Context, userID, gameID int) error
	CleanupExpiredGames(ctx context.Context) (int64, error)
	FormatGameDateTime(t time.Time) string
}

type gameService struct {
	gameRepo    repositories.GameRepository
	courtRepo   repositories.CourtRepository
	partnerRepo repositories.PartnerRepository
	userRepo    repositories.UserRepository
	uploader    storage.FileUploader
	publisher   Publisher
	clock       clock.Clock
	loc         *time.Location
	logger      *slog.Logger
}

func NewGameService(
	gameRepo repositories.GameRepository,
	courtRepo repositories.CourtRepository,
	partnerRepo repositories.PartnerRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	publisher Publisher,
	clk clock.Clock,
	loc *time.Location,
	logger *slog.Logger,
) GameService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &gameService{
		gameRepo:    gameRepo,
		courtRepo:   courtRepo,
		partnerRepo: partnerRepo,
		userRepo:    userRepo,
		uploader:    uploader,
		publisher:   publisher,
		clock:       clk,
		loc:         loc,
		logger:      logger,
	}
}

func (s *gameService) CreateGame(ctx context.Context, in models.NewGame) (int, error) {
	if err := s.validateNewGame(in); err != nil {
		return 0, err
	}

	court, err := s.courtRepo.GetByID(ctx, in.CourtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return 0, ErrUnknownCourt
		}
		return 0, fmt.Errorf("failed to load court %d: %w", in.CourtID, err)
	}

	game := &models.Game{
		CreatorID:   in.CreatorID,
		GameType:    in.GameType,
		SkillLevel:  in.SkillLevel,
		CourtID:     in.CourtID,
		ScheduledAt: in.ScheduledAt,
		Notes:       trimmedPtr(in.Notes),
		PhoneNumber: wizard.NormalizePhone(in.PhoneNumber),
		Status:      models.GameStatusOpen,
	}

	if in.GameType == models.GameTypeDoubles {
		game.PartnerName = trimmedPtr(in.PartnerName)
		if in.PartnerID != nil {
			partner, err := s.ownedPartner(ctx, in.CreatorID, *in.PartnerID)
			if err != nil {
				return 0, err
			}
			game.PartnerID = &partner.ID
			if game.PartnerName == nil {
				game.PartnerName = &partner.Name
			}
		}
	}

	if err := s.gameRepo.Create(ctx, game); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGameCourtInvalid):
			return 0, ErrUnknownCourt
		case errors.Is(err, repositories.ErrGameCreatorInvalid):
			// The account behind the token no longer exists.
			return 0, ErrSessionExpired
		default:
			return 0, fmt.Errorf("failed to create game: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "game created",
		slog.Int("game_id", game.ID),
		slog.Int("creator_id", game.CreatorID),
		slog.String("game_type", string(game.GameType)),
		slog.String("city", court.City))
	s.publish(realtime.GamesChanged{Reason: ReasonCreated, GameID: game.ID, City: court.City})
	return game.ID, nil
}

func (s *gameService) validateNewGame(in models.NewGame) error {
	if !in.GameType.Valid() {
		return ErrInvalidGameType
	}
	if _, ok := models.ParseSkillLevel(string(in.SkillLevel)); !ok {
		return ErrInvalidSkillLevel
	}
	if in.CourtID <= 0 {
		return ErrUnknownCourt
	}
	if in.ScheduledAt.IsZero() || in.ScheduledAt.Before(s.clock.Now()) {
		return ErrGameInPast
	}
	if in.Notes != nil && utf8.RuneCountInString(strings.TrimSpace(*in.Notes)) > wizard.MaxNotesLength {
		return ErrNotesTooLong
	}
	phone := wizard.NormalizePhone(in.PhoneNumber)
	if phone == "" {
		return ErrPhoneRequired
	}
	if !wizard.ValidPhone(phone) {
		return ErrInvalidPhone
	}
	return nil
}

func (s *gameService) ownedPartner(ctx context.Context, userID, partnerID int) (*models.Partner, error) {
	partners, err := s.partnerRepo.ListByIDs(ctx, []int{partnerID})
	if err != nil {
		return nil, fmt.Errorf("failed to load partner %d: %w", partnerID, err)
	}
	for i := range partners {
		if partners[i].ID == partnerID && partners[i].UserID == userID {
			return &partners[i], nil
		}
	}
	return nil, ErrPartnerNotFound
}

func (s *gameService) GetUserSchedules(ctx context.Context, userID int) ([]models.GameWithPlayers, error) {
	games, err := s.gameRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for user %d: %w", userID, err)
	}
	out, err := s.hydrate(ctx, games)
	if err != nil {
		return nil, err
	}
	listing.SortBySchedule(out)
	return out, nil
}

func (s *gameService) GetAvailableGamesWithDetails(ctx context.Context, userID int, fix *location.Fix) ([]models.GameWithPlayers, error) {
	games, err := s.gameRepo.ListOpen(ctx, s.clock.Now(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open games: %w", err)
	}
	out, err := s.hydrate(ctx, games)
	if err != nil {
		return nil, err
	}
	listing.AnnotateGames(out, fix)
	listing.SortBySchedule(out)
	return out, nil
}

func (s *gameService) SearchGames(ctx context.Context, userID int, filters listing.GameFilters, fix *location.Fix) ([]models.GameWithPlayers, error) {
	games, err := s.GetAvailableGamesWithDetails(ctx, userID, fix)
	if err != nil {
		return nil, err
	}
	return listing.Apply(games, filters, s.clock.Now().In(s.loc)), nil
}

// hydrate loads the courts, creators and partners referenced by games in
// parallel and attaches them.
func (s *gameService) hydrate(ctx context.Context, games []models.Game) ([]models.GameWithPlayers, error) {
	out := make([]models.GameWithPlayers, 0, len(games))
	if len(games) == 0 {
		return out, nil
	}

	var courtIDs, userIDs, partnerIDs []int
	for _, g := range games {
		courtIDs = appendUnique(courtIDs, g.CourtID)
		userIDs = appendUnique(userIDs, g.CreatorID)
		if g.PartnerID != nil {
			partnerIDs = appendUnique(partnerIDs, *g.PartnerID)
		}
	}

	var (
		courts   []models.Court
		users    []models.User
		partners []models.Partner
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courts, err = s.courtRepo.ListByIDs(gctx, courtIDs)
		if err != nil {
			return fmt.Errorf("failed to load courts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		users, err = s.userRepo.ListByIDs(gctx, userIDs)
		if err != nil {
			return fmt.Errorf("failed to load creators: %w", err)
		}
		return nil
	})
	if len(partnerIDs) > 0 {
		g.Go(func() error {
			var err error
			partners, err = s.partnerRepo.ListByIDs(gctx, partnerIDs)
			if err != nil {
				return fmt.Errorf("failed to load partners: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	courtByID := make(map[int]*models.Court, len(courts))
	for i := range courts {
		courtByID[courts[i].ID] = &courts[i]
	}
	userByID := make(map[int]*models.User, len(users))
	for i := range users {
		userByID[users[i].ID] = &users[i]
	}
	partnerByID := make(map[int]*models.Partner, len(partners))
	for i := range partners {
		partnerByID[partners[i].ID] = &partners[i]
	}

	for _, game := range games {
		row := models.GameWithPlayers{
			Game:        game,
			Court:       courtByID[game.CourtID],
			DisplayTime: s.FormatGameDateTime(game.ScheduledAt),
		}
		if u, ok := userByID[game.CreatorID]; ok {
			row.Creator = playerSummary(u, s.uploader)
		} else {
			s.logger.WarnContext(ctx, "game creator missing", slog.Int("game_id", game.ID), slog.Int("creator_id", game.CreatorID))
		}
		if game.GameType == models.GameTypeDoubles {
			row.Partner = partnerSummary(game, partnerByID)
		}
		out = append(out, row)
	}
	return out, nil
}

func appendUnique(ids []int, id int) []int {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func partnerSummary(game models.Game, byID map[int]*models.Partner) *models.PlayerSummary {
	if game.PartnerID != nil {
		if p, ok := byID[*game.PartnerID]; ok {
			return &models.PlayerSummary{ID: p.ID, Name: p.Name, SkillLevel: p.SkillLevel}
		}
	}
	if name := derefString(game.PartnerName); name != "" {
		return &models.PlayerSummary{Name: name}
	}
	return nil
}

func (s *gameService) DeleteSchedule(ctx context.Context, userID, gameID int) error {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to get game %d: %w", gameID, err)
	}
	if game.CreatorID != userID {
		return ErrForbiddenOperation
	}

	if err := s.gameRepo.Delete(ctx, gameID, userID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to delete game %d: %w", gameID, err)
	}

	ev := realtime.GamesChanged{Reason: ReasonDeleted, GameID: gameID}
	if court, err := s.courtRepo.GetByID(ctx, game.CourtID); err == nil {
		ev.City = court.City
	}
	s.publish(ev)
	return nil
}

// CleanupExpiredGames marks games whose time has passed as expired.
func (s *gameService) CleanupExpiredGames(ctx context.Context) (int64, error) {
	n, err := s.gameRepo.ExpireBefore(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire games: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired past games", slog.Int64("count", n))
		s.publish(realtime.GamesChanged{Reason: ReasonExpired})
	}
	return n, nil
}

// FormatGameDateTime renders t relative to today in the service's zone:
// "Today at 2:00 PM", "Tomorrow at 9:30 AM", "Saturday at 6:00 PM" within
// the coming week, otherwise "Jan 2 at 6:00 PM".
func (s *gameService) FormatGameDateTime(t time.Time) string {
	return FormatGameDateTime(t, s.clock.Now(), s.loc)
}

func FormatGameDateTime(t, now time.Time, loc *time.Location) string {
	t = t.In(loc)
	at := t.Format("3:04 PM")

	// Count calendar days so DST changes do not shift the label.
	days := int(civilDate(t).Sub(civilDate(now.In(loc))).Hours() / 24)
	switch {
	case days == 0:
		return "Today at " + at
	case days == 1:
		return "Tomorrow at " + at
	case days > 1 && days < 7:
		return t.Format("Monday") + " at " + at
	default:
		return t.Format("Jan 2") + " at " + at
	}
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *gameService) publish(ev realtime.GamesChanged) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishGamesChanged(ev)
}
