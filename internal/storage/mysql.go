package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	"booking-service/internal/config"
	"booking-service/internal/logger"
	"booking-service/internal/models"
)

const mysqlDuplicateEntry = 1062

type MySQLStore struct {
	db  *bun.DB
	log *logger.Logger
}

func NewMySQLStore(cfg config.DatabaseConfig, log *logger.Logger) (*MySQLStore, error) {
	log.LogDatabase("CONNECT", "mysql", fmt.Sprintf("Connecting to MySQL at %s:%s", cfg.Host, cfg.Port))

	sqldb, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Error("DATABASE", "Failed to open MySQL connection: "+err.Error())
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		log.Error("DATABASE", "Failed to ping MySQL: "+err.Error())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &MySQLStore{
		db:  bun.NewDB(sqldb, mysqldialect.New()),
		log: log,
	}

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			log.Error("DATABASE", "Failed to initialize tables: "+err.Error())
			return nil, fmt.Errorf("failed to initialize tables: %w", err)
		}
	}

	log.LogDatabase("SUCCESS", "mysql", "MySQL connection established")
	return store, nil
}

// translate maps driver errors onto the storage sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %s", ErrDuplicate, myErr.Message)
	}
	return err
}

func (s *MySQLStore) GetExperienceSlot(ctx context.Context, id int64) (*models.ExperienceSlot, error) {
	slot := new(models.ExperienceSlot)
	err := s.db.NewSelect().
		Model(slot).
		Relation("Experience").
		Where("es.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return slot, nil
}

func (s *MySQLStore) GetArtistSlot(ctx context.Context, id int64) (*models.ArtistSlot, error) {
	slot := new(models.ArtistSlot)
	err := s.db.NewSelect().
		Model(slot).
		Relation("Artist").
		Where("ars.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return slot, nil
}

func (s *MySQLStore) FindActivePromoCode(ctx context.Context, code string, at time.Time) (*models.PromoCode, error) {
	promo := new(models.PromoCode)
	err := s.db.NewSelect().
		Model(promo).
		Where("pc.code = ?", code).
		Where("pc.status = ?", models.PromoCodeActive).
		Where("pc.start_time <= ?", at).
		Where("pc.end_time >= ?", at).
		OrderExpr("pc.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return promo, nil
}

func (s *MySQLStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking := new(models.Booking)
	if err := s.db.NewSelect().Model(booking).Where("b.id = ?", id).Scan(ctx); err != nil {
		return nil, translate(err)
	}
	return booking, nil
}

func (s *MySQLStore) ListPayments(ctx context.Context, bookingID int64) ([]*models.Payment, error) {
	payments := make([]*models.Payment, 0)
	err := s.db.NewSelect().
		Model(&payments).
		Where("p.booking_id = ?", bookingID).
		OrderExpr("p.id ASC").
		Scan(ctx)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to list payments for booking %d: %v", bookingID, err))
		return nil, translate(err)
	}
	return payments, nil
}

func (s *MySQLStore) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	customer := new(models.Customer)
	if err := s.db.NewSelect().Model(customer).Where("c.id = ?", id).Scan(ctx); err != nil {
		return nil, translate(err)
	}
	return customer, nil
}

func (s *MySQLStore) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	supplier := new(models.Supplier)
	if err := s.db.NewSelect().Model(supplier).Where("s.id = ?", id).Scan(ctx); err != nil {
		return nil, translate(err)
	}
	return supplier, nil
}

func (s *MySQLStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, btx bun.Tx) error {
		return fn(ctx, &mysqlTx{tx: btx})
	})
	if err != nil {
		s.log.LogDatabase("ROLLBACK", "mysql", err.Error())
		return translate(err)
	}
	return nil
}

func (s *MySQLStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *MySQLStore) Close() error {
	s.log.LogDatabase("CLOSE", "mysql", "Closing MySQL connection")
	return s.db.Close()
}

type mysqlTx struct {
	tx bun.Tx
}

func (t *mysqlTx) LockBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking := new(models.Booking)
	err := t.tx.NewSelect().
		Model(booking).
		Where("b.id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return booking, nil
}

func (t *mysqlTx) LockExperienceSlot(ctx context.Context, id int64, guests int) (SlotLock, error) {
	slot := new(models.ExperienceSlot)
	err := t.tx.NewSelect().
		Model(slot).
		Where("es.id = ?", id).
		Where("es.remaining_guest_limit >= ?", guests).
		Where("es.is_active = ?", true).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}

	return &mysqlSlotLock{id: id, consume: func(ctx context.Context) error {
		_, err := t.tx.NewUpdate().
			Table("experience_slot").
			Set("remaining_guest_limit = remaining_guest_limit - ?", guests).
			Where("id = ?", id).
			Exec(ctx)
		return translate(err)
	}}, nil
}

func (t *mysqlTx) LockArtistSlot(ctx context.Context, id int64) (SlotLock, error) {
	slot := new(models.ArtistSlot)
	err := t.tx.NewSelect().
		Model(slot).
		Where("ars.id = ?", id).
		Where("ars.is_booked = ?", false).
		Where("ars.is_active = ?", true).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}

	return &mysqlSlotLock{id: id, consume: func(ctx context.Context) error {
		_, err := t.tx.NewUpdate().
			Table("artist_slot").
			Set("is_booked = ?", true).
			Where("id = ?", id).
			Exec(ctx)
		return translate(err)
	}}, nil
}

func (t *mysqlTx) GetPendingPayment(ctx context.Context, bookingID int64) (*models.Payment, error) {
	payment := new(models.Payment)
	err := t.tx.NewSelect().
		Model(payment).
		Where("p.booking_id = ?", bookingID).
		Where("p.status = ?", models.PaymentStatusPending).
		OrderExpr("p.id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return payment, nil
}

func (t *mysqlTx) CreateBooking(ctx context.Context, booking *models.Booking) error {
	_, err := t.tx.NewInsert().Model(booking).Exec(ctx)
	return translate(err)
}

func (t *mysqlTx) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	res, err := t.tx.NewUpdate().
		Model(booking).
		ExcludeColumn("id", "booking_uuid", "created_time").
		WherePK().
		Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return expectRow(res)
}

func (t *mysqlTx) CreatePayment(ctx context.Context, payment *models.Payment) error {
	_, err := t.tx.NewInsert().Model(payment).Exec(ctx)
	return translate(err)
}

func (t *mysqlTx) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	res, err := t.tx.NewUpdate().
		Model(payment).
		ExcludeColumn("id", "booking_id", "transaction_code", "created_time").
		WherePK().
		Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return expectRow(res)
}

func (t *mysqlTx) UpdateArtistSlotVenue(ctx context.Context, slotID int64, venue models.Venue) error {
	res, err := t.tx.NewUpdate().
		Table("artist_slot").
		Set("venue_address = ?", venue.Address).
		Set("venue_city = ?", venue.City).
		Set("venue_state = ?", venue.State).
		Set("venue_country = ?", venue.Country).
		Where("id = ?", slotID).
		Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return expectRow(res)
}

// expectRow maps an update that matched no row to ErrNotFound. The DSN sets
// clientFoundRows so unchanged rows still count as matched.
func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type mysqlSlotLock struct {
	id       int64
	consumed bool
	consume  func(ctx context.Context) error
}

func (l *mysqlSlotLock) SlotID() int64 {
	return l.id
}

func (l *mysqlSlotLock) Consume(ctx context.Context) error {
	if l.consumed {
		return ErrLockConsumed
	}
	l.consumed = true
	return l.consume(ctx)
}
