package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlcli-labs/sqlcli/internal/session"
)

// demoStatements builds the sample schema and data used by the demo
// command. Executed in order through the regular session layer.
var demoStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username VARCHAR(50) UNIQUE NOT NULL,
		email VARCHAR(100) UNIQUE NOT NULL,
		age INTEGER,
		city VARCHAR(50),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(100) NOT NULL,
		category VARCHAR(50),
		price DECIMAL(10,2),
		stock_quantity INTEGER DEFAULT 0,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		product_name VARCHAR(100) NOT NULL,
		quantity INTEGER DEFAULT 1,
		price DECIMAL(10,2),
		order_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
	`INSERT INTO users (username, email, age, city) VALUES
		('john_doe', 'john@example.com', 28, 'New York'),
		('jane_smith', 'jane@example.com', 34, 'Los Angeles'),
		('bob_wilson', 'bob@example.com', 22, 'Chicago'),
		('alice_brown', 'alice@example.com', 29, 'Houston'),
		('charlie_davis', 'charlie@example.com', 31, 'Phoenix')`,
	`INSERT INTO products (name, category, price, stock_quantity, description) VALUES
		('Laptop', 'Electronics', 1299.99, 12, 'Developer laptop'),
		('Keyboard', 'Electronics', 89.50, 45, 'Mechanical keyboard'),
		('Desk Lamp', 'Office', 34.00, 80, 'Adjustable LED lamp'),
		('Notebook', 'Office', 4.25, 500, 'A5 dotted notebook'),
		('Monitor', 'Electronics', 249.00, 23, '27-inch display')`,
	`INSERT INTO orders (user_id, product_name, quantity, price) VALUES
		(1, 'Laptop', 1, 1299.99),
		(1, 'Keyboard', 1, 89.50),
		(2, 'Monitor', 2, 498.00),
		(3, 'Notebook', 10, 42.50),
		(4, 'Desk Lamp', 1, 34.00),
		(5, 'Keyboard', 1, 89.50),
		(2, 'Notebook', 3, 12.75)`,
}

// NewDemoCommand creates the demo command.
func NewDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo [database]",
		Short: "Create a sample database for trying out the shell",
		Long: `Create a small sample database with users, products, and orders
tables, then point the shell at it:

  sqlcli demo
  sqlcli shell sample_data.sqlite`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "sample_data.sqlite"
			if len(args) > 0 {
				path = args[0]
			}
			return runDemo(cmd, path)
		},
	}
}

func runDemo(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()

	sess := session.New()
	defer func() { _ = sess.Close() }()

	if err := sess.Connect(ctx, path); err != nil {
		return err
	}

	for _, statement := range demoStatements {
		if _, err := sess.Execute(ctx, statement); err != nil {
			return err
		}
	}

	tables, err := sess.Tables(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Sample database created at %s\n", path)
	for _, name := range tables {
		rs, err := sess.Execute(ctx, fmt.Sprintf("SELECT count(*) FROM %q", name))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "  %-10s %s rows\n", name, rs.Rows[0][0])
	}
	return nil
}
