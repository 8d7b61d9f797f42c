package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/snowflakedb/gosnowflake"
	"medallion/pkg/errors"
	"medallion/pkg/models"
)

// Service provides warehouse database operations for all three layers
type Service struct {
	db        *sql.DB
	config    Config
	connected bool
}

// Config holds the warehouse connection configuration
type Config struct {
	Account   string
	Username  string
	Password  string
	Database  string
	Warehouse string
	Role      string
	Timeout   time.Duration
}

// ConfigFromModel maps the YAML config onto a connection Config
func ConfigFromModel(wh models.Warehouse, timeout time.Duration) Config {
	return Config{
		Account:   wh.Account,
		Username:  wh.Username,
		Password:  wh.Password,
		Database:  wh.Database,
		Warehouse: wh.Warehouse,
		Role:      wh.Role,
		Timeout:   timeout,
	}
}

// NewService creates a new warehouse service
func NewService(config Config) *Service {
	return &Service{config: config}
}

// NewServiceWithDB wraps an already-open connection. Used by loader tests
// running against a mock driver.
func NewServiceWithDB(db *sql.DB, config Config) *Service {
	return &Service{db: db, config: config, connected: true}
}

// Connect establishes a connection to the warehouse
func (s *Service) Connect() error {
	if s.connected {
		return nil
	}

	dsn := fmt.Sprintf("%s:%s@%s/%s?warehouse=%s&role=%s",
		s.config.Username,
		s.config.Password,
		s.config.Account,
		s.config.Database,
		s.config.Warehouse,
		s.config.Role,
	)

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return errors.ConnectionError("Failed to open warehouse connection", err).
			WithContext("account", s.config.Account).
			WithContext("warehouse", s.config.Warehouse)
	}

	// Single-batch execution; a small pool covers the failure-log write
	// that happens outside the batch transaction.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	ctx, cancel := s.getContext()
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		if strings.Contains(err.Error(), "authentication") {
			return errors.New(errors.ErrCodeAuthenticationFailed, "Authentication failed").
				WithContext("user", s.config.Username).
				WithSuggestions(
					"Verify your username and password",
					"Check if your account is locked",
				)
		}

		return errors.ConnectionError("Failed to connect to warehouse", err).
			WithContext("account", s.config.Account)
	}

	s.db = db
	s.connected = true
	return nil
}

// Close closes the database connection
func (s *Service) Close() error {
	if !s.connected {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	s.connected = false
	return nil
}

// BeginTx starts the batch transaction
func (s *Service) BeginTx(ctx context.Context) (*sql.Tx, error) {
	if !s.connected {
		return nil, errors.New(errors.ErrCodeConnectionFailed, "Not connected to database").
			WithSuggestions("Call Connect() before starting a batch")
	}
	return s.db.BeginTx(ctx, nil)
}

// TruncateTable removes all rows from a table. TRUNCATE deallocates the
// whole table rather than deleting row by row, and still takes part in the
// surrounding batch transaction.
func (s *Service) TruncateTable(ctx context.Context, tx *sql.Tx, schema, table string) error {
	stmt := fmt.Sprintf("TRUNCATE TABLE %s", Qualify(s.config.Database, schema, table))
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errors.SQLError(fmt.Sprintf("Failed to truncate %s.%s", schema, table), stmt, err).
			WithContext("schema", schema).
			WithContext("table", table)
	}
	return nil
}

// InsertBatch bulk-appends rows into a table using multi-row VALUES inserts,
// batchSize rows per statement, inside the supplied transaction.
func (s *Service) InsertBatch(ctx context.Context, tx *sql.Tx, schema, table string, columns []string, rows [][]interface{}, batchSize int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	target := Qualify(s.config.Database, schema, table)
	var inserted int64

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		stmt, args := buildInsert(target, columns, chunk)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return inserted, errors.SQLError(
				fmt.Sprintf("Failed to insert into %s.%s", schema, table), stmt, err).
				WithContext("schema", schema).
				WithContext("table", table).
				WithContext("batch_offset", start)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		} else {
			inserted += int64(len(chunk))
		}
	}

	return inserted, nil
}

// QueryRows runs a SELECT and returns the result set for streaming scans
func (s *Service) QueryRows(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if !s.connected {
		return nil, errors.New(errors.ErrCodeConnectionFailed, "Not connected to database")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.SQLError("Query failed", query, err)
	}
	return rows, nil
}

// ExecuteSQL executes semicolon-separated SQL statements in one transaction.
// Used by schema provisioning.
func (s *Service) ExecuteSQL(ctx context.Context, sqlText string) error {
	if !s.connected {
		return errors.New(errors.ErrCodeConnectionFailed, "Not connected to database").
			WithSuggestions("Call Connect() before executing SQL")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin transaction")
	}

	txHandler := errors.GetGlobalErrorHandler().NewTransactionHandler(tx.Rollback)

	return txHandler.Execute(func() error {
		statements := splitStatements(sqlText)

		for i, stmt := range statements {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}

			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				sqlErr := errors.SQLError(
					fmt.Sprintf("Failed to execute statement %d", i+1),
					stmt,
					err,
				).WithContext("statement_index", i+1).
					WithContext("total_statements", len(statements))

				errStr := err.Error()
				if strings.Contains(errStr, "does not exist") || strings.Contains(errStr, "not found") {
					sqlErr.Code = errors.ErrCodeSQLObjectNotFound
					sqlErr.WithSuggestions(
						"Verify the object exists in the target database/schema",
						"Run 'medallion provision' to create the layer tables",
					)
				}

				return sqlErr
			}
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to commit transaction")
		}

		return nil
	})
}

// ExecOutsideTx runs one statement on its own connection, outside any batch
// transaction. The failure log write goes through here so a batch rollback
// cannot erase it.
func (s *Service) ExecOutsideTx(ctx context.Context, stmt string, args ...interface{}) error {
	if !s.connected {
		return errors.New(errors.ErrCodeConnectionFailed, "Not connected to database")
	}
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.SQLError("Statement failed", stmt, err)
	}
	return nil
}

// TestConnection tests the database connection
func (s *Service) TestConnection() error {
	if !s.connected {
		if err := s.Connect(); err != nil {
			return err
		}
	}

	ctx, cancel := s.getContext()
	defer cancel()

	return s.db.PingContext(ctx)
}

// Database returns the configured database name
func (s *Service) Database() string {
	return s.config.Database
}

// Helper methods

func (s *Service) getContext() (context.Context, context.CancelFunc) {
	timeout := s.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// Qualify builds a fully-qualified table identifier
func Qualify(database, schema, table string) string {
	return fmt.Sprintf("%s.%s.%s", database, schema, table)
}

func buildInsert(target string, columns []string, rows [][]interface{}) (string, []interface{}) {
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(target)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")

	args := make([]interface{}, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholder)
		args = append(args, row...)
	}

	return b.String(), args
}

func splitStatements(sqlText string) []string {
	// Simple statement splitter - splits on semicolons not within strings
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := rune(0)

	for i, char := range sqlText {
		if !inString {
			if char == '\'' || char == '"' {
				inString = true
				stringChar = char
			} else if char == ';' {
				if i == 0 || sqlText[i-1] != '\\' {
					statements = append(statements, current.String())
					current.Reset()
					continue
				}
			}
		} else {
			if char == stringChar && (i == 0 || sqlText[i-1] != '\\') {
				inString = false
			}
		}
		current.WriteRune(char)
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}

// ValidateConfig validates the warehouse configuration
func ValidateConfig(config Config) error {
	if config.Account == "" {
		return fmt.Errorf("account is required")
	}
	if config.Username == "" {
		return fmt.Errorf("username is required")
	}
	if config.Password == "" {
		return fmt.Errorf("password is required")
	}
	if config.Database == "" {
		return fmt.Errorf("database is required")
	}
	if config.Warehouse == "" {
		return fmt.Errorf("warehouse is required")
	}
	return nil
}
