package repository

import (
	"computer-inventory-api/internal/model"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Per-call timeouts applied on top of the caller's context.
const (
	readTimeout   = 5 * time.Second
	listTimeout   = 10 * time.Second
	existsTimeout = 3 * time.Second
	writeTimeout  = 5 * time.Second
)

const statusAssignmentSelect = `
		SELECT sa.id, sa.computer_id, sa.status_id, s.name, sa.assign_date
		FROM computer_status_assignments sa
		JOIN computer_statuses s ON s.id = sa.status_id`

const userAssignmentSelect = `
		SELECT ua.id, ua.computer_id, ua.user_id, ua.start_date, ua.end_date,
			u.first_name, u.last_name, u.email, c.serial_number, m.name
		FROM computer_user_assignments ua
		JOIN users u ON u.id = ua.user_id
		JOIN computers c ON c.id = ua.computer_id
		JOIN manufacturers m ON m.id = c.manufacturer_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatusAssignment(row rowScanner) (model.StatusAssignment, error) {
	var sa model.StatusAssignment
	err := row.Scan(&sa.ID, &sa.ComputerID, &sa.StatusID, &sa.StatusName, &sa.AssignDate)
	return sa, err
}

func scanUserAssignment(row rowScanner) (model.UserAssignment, error) {
	var (
		ua  model.UserAssignment
		end sql.NullTime
	)
	err := row.Scan(&ua.ID, &ua.ComputerID, &ua.UserID, &ua.StartDate, &end,
		&ua.UserFirstName, &ua.UserLastName, &ua.UserEmail, &ua.SerialNumber, &ua.ManufacturerName)
	if err != nil {
		return ua, err
	}
	if end.Valid {
		endDate := end.Time
		ua.EndDate = &endDate
	}
	return ua, nil
}

func idArray(ids []uuid.UUID) any {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return pq.Array(values)
}

// queryStatusAssignments returns status rows of the given computers in insertion order.
func queryStatusAssignments(ctx context.Context, q DBTX, computerIDs []uuid.UUID) ([]model.StatusAssignment, error) {
	query := statusAssignmentSelect + `
		WHERE sa.computer_id = ANY($1::uuid[])
		ORDER BY sa.seq`

	rows, err := q.QueryContext(ctx, query, idArray(computerIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query status assignments: %w", err)
	}
	defer rows.Close()

	var result []model.StatusAssignment
	for rows.Next() {
		sa, err := scanStatusAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status assignment: %w", err)
		}
		result = append(result, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return result, nil
}

// queryUserAssignments returns assignment rows in insertion order, keyed
// either by computer or by user.
func queryUserAssignments(ctx context.Context, q DBTX, column string, ids []uuid.UUID, openOnly bool) ([]model.UserAssignment, error) {
	query := userAssignmentSelect + fmt.Sprintf(`
		WHERE ua.%s = ANY($1::uuid[])`, column)
	if openOnly {
		query += ` AND ua.end_date IS NULL`
	}
	query += `
		ORDER BY ua.seq`

	rows, err := q.QueryContext(ctx, query, idArray(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query user assignments: %w", err)
	}
	defer rows.Close()

	var result []model.UserAssignment
	for rows.Next() {
		ua, err := scanUserAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user assignment: %w", err)
		}
		result = append(result, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return result, nil
}

// loadTimelines attaches both timelines to every computer in place.
func loadTimelines(ctx context.Context, q DBTX, computers []model.Computer) error {
	if len(computers) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(computers))
	index := make(map[uuid.UUID]int, len(computers))
	for i, c := range computers {
		ids[i] = c.ID
		index[c.ID] = i
	}

	statuses, err := queryStatusAssignments(ctx, q, ids)
	if err != nil {
		return err
	}
	for _, sa := range statuses {
		if i, ok := index[sa.ComputerID]; ok {
			computers[i].StatusAssignments = append(computers[i].StatusAssignments, sa)
		}
	}

	assignments, err := queryUserAssignments(ctx, q, "computer_id", ids, false)
	if err != nil {
		return err
	}
	for _, ua := range assignments {
		if i, ok := index[ua.ComputerID]; ok {
			computers[i].UserAssignments = append(computers[i].UserAssignments, ua)
		}
	}

	return nil
}

func insertStatusAssignment(ctx context.Context, q DBTX, sa model.StatusAssignment) error {
	query := `
		INSERT INTO computer_status_assignments (id, computer_id, status_id, assign_date)
		VALUES ($1, $2, $3, $4)`

	if _, err := q.ExecContext(ctx, query, sa.ID, sa.ComputerID, sa.StatusID, sa.AssignDate); err != nil {
		return mapWriteError(err, "failed to insert status assignment")
	}
	return nil
}

func insertUserAssignment(ctx context.Context, q DBTX, ua model.UserAssignment) error {
	query := `
		INSERT INTO computer_user_assignments (id, computer_id, user_id, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := q.ExecContext(ctx, query, ua.ID, ua.ComputerID, ua.UserID, ua.StartDate, ua.EndDate); err != nil {
		return mapWriteError(err, "failed to insert user assignment")
	}
	return nil
}

func closeUserAssignment(ctx context.Context, q DBTX, ua model.UserAssignment) error {
	if ua.EndDate == nil {
		return fmt.Errorf("closing assignment %s without an end date", ua.ID)
	}

	query := `
		UPDATE computer_user_assignments
		SET end_date = $1
		WHERE id = $2 AND computer_id = $3 AND end_date IS NULL`

	result, err := q.ExecContext(ctx, query, *ua.EndDate, ua.ID, ua.ComputerID)
	if err != nil {
		return fmt.Errorf("failed to close user assignment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAssignmentClosed
	}
	return nil
}

// mapWriteError translates constraint violations into sentinel errors.
func mapWriteError(err error, message string) error {
	if constraint, ok := pqConstraint(err, pgUniqueViolation); ok {
		switch constraint {
		case "computers_serial_number_key":
			return ErrDuplicateSerial
		case "users_email_key":
			return ErrDuplicateEmail
		case "computer_user_assignments_open_key":
			return ErrComputerAlreadyAssigned
		}
	}

	if constraint, ok := pqConstraint(err, pgForeignKeyViolation); ok {
		switch constraint {
		case "computers_manufacturer_id_fkey":
			return ErrManufacturerNotFound
		case "computer_status_assignments_status_id_fkey":
			return ErrStatusNotFound
		case "computer_user_assignments_user_id_fkey":
			return ErrUserNotFound
		case "computer_status_assignments_computer_id_fkey", "computer_user_assignments_computer_id_fkey":
			return ErrComputerNotFound
		}
	}

	return fmt.Errorf("%s: %w", message, err)
}
