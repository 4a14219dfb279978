package storage

import (
	"context"
	"fmt"
)

var schema = []struct {
	table string
	ddl   string
}{
	{"customer", `
    CREATE TABLE IF NOT EXISTS customer (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        email_id VARCHAR(255) NOT NULL
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"supplier", `
    CREATE TABLE IF NOT EXISTS supplier (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        email_id VARCHAR(255) NOT NULL
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"experience", `
    CREATE TABLE IF NOT EXISTS experience (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        host_id BIGINT NOT NULL,
        title VARCHAR(255) NOT NULL,
        guest_limit INT NOT NULL,
        price_per_guest DECIMAL(10,2) NOT NULL,
        venue_address VARCHAR(512),
        venue_city VARCHAR(128),
        venue_state VARCHAR(128),
        venue_country VARCHAR(128),
        INDEX idx_host_id (host_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"experience_slot", `
    CREATE TABLE IF NOT EXISTS experience_slot (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        experience_id BIGINT NOT NULL,
        start_time DATETIME NOT NULL,
        end_time DATETIME NOT NULL,
        remaining_guest_limit INT NOT NULL,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        INDEX idx_experience_id (experience_id),
        CONSTRAINT chk_remaining_guest_limit CHECK (remaining_guest_limit >= 0)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"artist_slot", `
    CREATE TABLE IF NOT EXISTS artist_slot (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        artist_id BIGINT NOT NULL,
        price DECIMAL(10,2) NOT NULL,
        start_time DATETIME NOT NULL,
        end_time DATETIME NOT NULL,
        is_booked BOOLEAN NOT NULL DEFAULT FALSE,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        venue_address VARCHAR(512),
        venue_city VARCHAR(128),
        venue_state VARCHAR(128),
        venue_country VARCHAR(128),
        INDEX idx_artist_id (artist_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"promo_code", `
    CREATE TABLE IF NOT EXISTS promo_code (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        code VARCHAR(64) NOT NULL,
        type VARCHAR(16) NOT NULL,
        description VARCHAR(255),
        min_purchase_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
        max_discount_amount DECIMAL(10,2),
        flat_discount_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
        discount_percent DECIMAL(5,2) NOT NULL DEFAULT 0,
        start_time DATETIME NOT NULL,
        end_time DATETIME NOT NULL,
        visible BOOLEAN NOT NULL DEFAULT TRUE,
        status VARCHAR(16) NOT NULL,
        INDEX idx_code (code)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"booking", `
    CREATE TABLE IF NOT EXISTS booking (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        booking_uuid VARCHAR(32) NOT NULL,
        booking_type VARCHAR(16) NOT NULL,
        customer_id BIGINT NOT NULL,
        supplier_id BIGINT NOT NULL,
        experience_slot_id BIGINT,
        artist_slot_id BIGINT,
        no_of_guests INT NOT NULL,
        status VARCHAR(32) NOT NULL,
        sub_total DECIMAL(10,2) NOT NULL,
        service_tax DECIMAL(10,2) NOT NULL,
        promo_discount DECIMAL(10,2) NOT NULL DEFAULT 0,
        payable_amount DECIMAL(10,2) NOT NULL,
        promo_code_id BIGINT,
        cancellation_time DATETIME,
        cancelled_by VARCHAR(16),
        cancellation_reason TEXT,
        confirmation_time DATETIME,
        created_time DATETIME NOT NULL,
        updated_time DATETIME NOT NULL,
        UNIQUE KEY uq_booking_uuid (booking_uuid),
        INDEX idx_customer_id (customer_id),
        INDEX idx_supplier_id (supplier_id),
        INDEX idx_status (status)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"payment", `
    CREATE TABLE IF NOT EXISTS payment (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        booking_id BIGINT NOT NULL,
        amount DECIMAL(10,2) NOT NULL,
        status VARCHAR(16) NOT NULL,
        transaction_code VARCHAR(32) NOT NULL,
        payment_method VARCHAR(8) NOT NULL,
        pg_order_id VARCHAR(255),
        created_time DATETIME NOT NULL,
        updated_time DATETIME NOT NULL,
        UNIQUE KEY uq_transaction_code (transaction_code),
        INDEX idx_booking_id (booking_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

// Migrate creates any missing tables.
func (s *MySQLStore) Migrate(ctx context.Context) error {
	for _, t := range schema {
		s.log.LogDatabase("MIGRATE", t.table, "Creating table if not exists")
		if _, err := s.db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.table, err)
		}
	}
	s.log.LogDatabase("SUCCESS", "mysql", "Schema ready")
	return nil
}
