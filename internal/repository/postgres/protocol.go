package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
)

const handoverColumns = `id, rental_id, vehicle_condition, fuel_level, mileage, photos, signature, notes, pdf_path, created_by, created_at`

const returnColumns = `id, rental_id, handover_protocol_id, vehicle_condition, fuel_level, mileage, kilometers_used,
	kilometer_fee, fuel_fee, total_extra_fees, photos, signature, notes, pdf_path, created_by, created_at`

type protocolRepository struct {
	db *sql.DB
}

func NewProtocolRepository(db *sql.DB) repository.ProtocolRepository {
	return &protocolRepository{db: db}
}

type protocolText struct {
	signature, notes, pdfPath, createdBy sql.NullString
	condition, photos                    []byte
}

func (t *protocolText) apply(p *domain.HandoverProtocol) error {
	p.Signature = t.signature.String
	p.Notes = t.notes.String
	p.PDFPath = t.pdfPath.String
	p.CreatedBy = t.createdBy.String
	if len(t.condition) > 0 && string(t.condition) != "null" {
		p.VehicleCondition = json.RawMessage(append([]byte(nil), t.condition...))
	}
	if err := parseJSON(t.photos, &p.Photos); err != nil {
		return err
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}
	return nil
}

func scanHandover(row rowScanner) (*domain.HandoverProtocol, error) {
	var p domain.HandoverProtocol
	var t protocolText
	err := row.Scan(&p.ID, &p.RentalID, &t.condition, &p.FuelLevel, &p.Mileage, &t.photos,
		&t.signature, &t.notes, &t.pdfPath, &t.createdBy, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := t.apply(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanReturn(row rowScanner) (*domain.ReturnProtocol, error) {
	var p domain.ReturnProtocol
	var t protocolText
	err := row.Scan(&p.ID, &p.RentalID, &p.HandoverProtocolID, &t.condition, &p.FuelLevel, &p.Mileage, &p.KilometersUsed,
		&p.KilometerFee, &p.FuelFee, &p.TotalExtraFees, &t.photos, &t.signature, &t.notes, &t.pdfPath, &t.createdBy, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := t.apply(&p.HandoverProtocol); err != nil {
		return nil, err
	}
	return &p, nil
}

func protocolJSON(p *domain.HandoverProtocol) (condition, photos interface{}, err error) {
	if len(p.VehicleCondition) > 0 {
		condition, err = toJSON(p.VehicleCondition)
		if err != nil {
			return nil, nil, err
		}
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}
	photos, err = toJSON(p.Photos)
	return condition, photos, err
}

// lockRental reads the protocol references of a rental under a row lock
func lockRental(ctx context.Context, tx *sql.Tx, rentalID string) (handoverID, returnID sql.NullString, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT handover_protocol_id, return_protocol_id FROM rentals WHERE id = $1 FOR UPDATE`, rentalID).
		Scan(&handoverID, &returnID)
	return handoverID, returnID, notFound(err)
}

func (r *protocolRepository) CreateHandover(ctx context.Context, p *domain.HandoverProtocol) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	condition, photos, err := protocolJSON(p)
	if err != nil {
		return err
	}

	return ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		handoverID, _, err := lockRental(ctx, tx, p.RentalID)
		if err != nil {
			return err
		}
		if handoverID.Valid {
			return repository.ErrProtocolExists
		}

		query := `INSERT INTO handover_protocols (id, rental_id, vehicle_condition, fuel_level, mileage, photos, signature, notes, pdf_path, created_by)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`
		logger.DatabaseCall("insert_handover_protocol", query, "rental_id", p.RentalID)
		err = tx.QueryRowContext(ctx, query, p.ID, p.RentalID, condition, p.FuelLevel, p.Mileage, photos,
			nullString(p.Signature), nullString(p.Notes), nullString(p.PDFPath), nullString(p.CreatedBy)).Scan(&p.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrProtocolExists
			}
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE rentals SET handover_protocol_id = $1 WHERE id = $2`, p.ID, p.RentalID)
		return err
	})
}

func (r *protocolRepository) CreateReturn(ctx context.Context, p *domain.ReturnProtocol) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	condition, photos, err := protocolJSON(&p.HandoverProtocol)
	if err != nil {
		return err
	}

	return ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		handoverID, returnID, err := lockRental(ctx, tx, p.RentalID)
		if err != nil {
			return err
		}
		if !handoverID.Valid {
			return repository.ErrHandoverRequired
		}
		if returnID.Valid {
			return repository.ErrProtocolExists
		}
		p.HandoverProtocolID = handoverID.String

		query := `INSERT INTO return_protocols (id, rental_id, handover_protocol_id, vehicle_condition, fuel_level, mileage, kilometers_used,
		          kilometer_fee, fuel_fee, total_extra_fees, photos, signature, notes, pdf_path, created_by)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING created_at`
		err = tx.QueryRowContext(ctx, query, p.ID, p.RentalID, p.HandoverProtocolID, condition, p.FuelLevel, p.Mileage, p.KilometersUsed,
			p.KilometerFee, p.FuelFee, p.TotalExtraFees, photos, nullString(p.Signature), nullString(p.Notes), nullString(p.PDFPath),
			nullString(p.CreatedBy)).Scan(&p.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrProtocolExists
			}
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE rentals SET return_protocol_id = $1 WHERE id = $2`, p.ID, p.RentalID)
		return err
	})
}

func (r *protocolRepository) GetHandover(ctx context.Context, id string) (*domain.HandoverProtocol, error) {
	p, err := scanHandover(r.db.QueryRowContext(ctx, `SELECT `+handoverColumns+` FROM handover_protocols WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *protocolRepository) GetReturn(ctx context.Context, id string) (*domain.ReturnProtocol, error) {
	p, err := scanReturn(r.db.QueryRowContext(ctx, `SELECT `+returnColumns+` FROM return_protocols WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *protocolRepository) GetByRental(ctx context.Context, rentalID string) (*domain.RentalProtocols, error) {
	result := &domain.RentalProtocols{}

	h, err := scanHandover(r.db.QueryRowContext(ctx, `SELECT `+handoverColumns+` FROM handover_protocols WHERE rental_id = $1`, rentalID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	result.Handover = h

	ret, err := scanReturn(r.db.QueryRowContext(ctx, `SELECT `+returnColumns+` FROM return_protocols WHERE rental_id = $1`, rentalID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	result.Return = ret

	return result, nil
}

func (r *protocolRepository) UpdateHandover(ctx context.Context, p *domain.HandoverProtocol) error {
	condition, photos, err := protocolJSON(p)
	if err != nil {
		return err
	}
	query := `UPDATE handover_protocols SET vehicle_condition=$1, fuel_level=$2, mileage=$3, photos=$4, signature=$5, notes=$6, pdf_path=$7
	          WHERE id=$8`
	res, err := r.db.ExecContext(ctx, query, condition, p.FuelLevel, p.Mileage, photos,
		nullString(p.Signature), nullString(p.Notes), nullString(p.PDFPath), p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *protocolRepository) UpdateReturn(ctx context.Context, p *domain.ReturnProtocol) error {
	condition, photos, err := protocolJSON(&p.HandoverProtocol)
	if err != nil {
		return err
	}
	query := `UPDATE return_protocols SET vehicle_condition=$1, fuel_level=$2, mileage=$3, kilometers_used=$4, kilometer_fee=$5,
	          fuel_fee=$6, total_extra_fees=$7, photos=$8, signature=$9, notes=$10, pdf_path=$11 WHERE id=$12`
	res, err := r.db.ExecContext(ctx, query, condition, p.FuelLevel, p.Mileage, p.KilometersUsed, p.KilometerFee,
		p.FuelFee, p.TotalExtraFees, photos, nullString(p.Signature), nullString(p.Notes), nullString(p.PDFPath), p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *protocolRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := ExecuteTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE rentals SET handover_protocol_id = NULL, return_protocol_id = NULL
			WHERE handover_protocol_id IS NOT NULL OR return_protocol_id IS NOT NULL`); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM return_protocols`)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		deleted += n
		res, err = tx.ExecContext(ctx, `DELETE FROM handover_protocols`)
		if err != nil {
			return err
		}
		n, _ = res.RowsAffected()
		deleted += n
		return nil
	})
	return deleted, err
}
