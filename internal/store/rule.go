package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Rule represents a user-defined classification rule stored in the database.
// Rules extend the built-in decision table; they are evaluated in position
// order after the built-ins.
type Rule struct {
	ID        string
	Label     string
	Pattern   string
	Position  int
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RuleRepository provides CRUD operations for rules.
type RuleRepository struct {
	db *sql.DB
}

// Rules returns the rule repository for this store.
func (s *Store) Rules() *RuleRepository {
	return &RuleRepository{db: s.db}
}

// Create inserts a new rule into the database.
func (r *RuleRepository) Create(rule *Rule) error {
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO rules (id, label, pattern, position, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.Label, rule.Pattern, rule.Position, rule.Enabled, rule.CreatedAt, rule.UpdatedAt,
	)
	return err
}

// GetByID retrieves a rule by its ID.
func (r *RuleRepository) GetByID(id string) (*Rule, error) {
	rule := &Rule{}
	var enabled int

	err := r.db.QueryRow(
		`SELECT id, label, pattern, position, enabled, created_at, updated_at
		 FROM rules WHERE id = ?`,
		id,
	).Scan(&rule.ID, &rule.Label, &rule.Pattern, &rule.Position, &enabled, &rule.CreatedAt, &rule.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rule.Enabled = enabled != 0
	return rule, nil
}

// List retrieves all rules ordered by position.
func (r *RuleRepository) List() ([]*Rule, error) {
	rows, err := r.db.Query(
		`SELECT id, label, pattern, position, enabled, created_at, updated_at
		 FROM rules ORDER BY position, created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*Rule
	for rows.Next() {
		rule := &Rule{}
		var enabled int

		err := rows.Scan(&rule.ID, &rule.Label, &rule.Pattern, &rule.Position, &enabled, &rule.CreatedAt, &rule.UpdatedAt)
		if err != nil {
			return nil, err
		}

		rule.Enabled = enabled != 0
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rules, nil
}

// ListEnabled retrieves only the enabled rules, ordered by position.
func (r *RuleRepository) ListEnabled() ([]*Rule, error) {
	rules, err := r.List()
	if err != nil {
		return nil, err
	}

	enabled := rules[:0]
	for _, rule := range rules {
		if rule.Enabled {
			enabled = append(enabled, rule)
		}
	}
	return enabled, nil
}

// Update updates an existing rule in the database.
func (r *RuleRepository) Update(rule *Rule) error {
	rule.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE rules SET label = ?, pattern = ?, position = ?, enabled = ?, updated_at = ?
		 WHERE id = ?`,
		rule.Label, rule.Pattern, rule.Position, rule.Enabled, rule.UpdatedAt, rule.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a rule from the database by its ID.
func (r *RuleRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
