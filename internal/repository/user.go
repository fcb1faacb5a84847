package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

const userColumns = `id, email, hashed_password, created_date`

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and fills in the generated ID and creation time.
// A duplicate email yields ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return runInTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO users (email, hashed_password) VALUES (?, ?)`,
			user.Email, user.HashedPassword,
		)
		if err != nil {
			if isDuplicateEntryError(err) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("inserting user: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading user id: %w", err)
		}

		stored, err := getUser(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
		if err != nil {
			return err
		}
		*user = *stored
		return nil
	})
}

// GetByEmail retrieves a user by exact, case-sensitive email match.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return getUser(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return getUser(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func getUser(ctx context.Context, q querier, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := q.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.HashedPassword, &user.CreatedDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
