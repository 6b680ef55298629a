package database

import "context"

// Tx is a transaction scoped to a WithTx callback.
type Tx struct {
	exec   executor
	client *Client
}

// Execute runs a statement inside the transaction. See Client.Execute.
func (tx *Tx) Execute(ctx context.Context, query string, params Params, mode string) (*Result, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	ctx, cancel := tx.client.withTimeout(ctx)
	defer cancel()

	return tx.exec.run(ctx, query, params, m)
}

// WithTx runs fn inside a transaction on the client's connection. The
// transaction commits when fn returns nil and rolls back when fn returns an
// error or panics. fn's error is returned unchanged.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	conn, err := c.handle()
	if err != nil {
		return err
	}

	sqlTx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return c.dialect.mapError(err, "failed to begin transaction")
	}

	done := false
	defer func() {
		if done {
			return
		}
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			c.log.ErrorWith("transaction rollback failed", rbErr, nil)
		}
	}()

	if err := fn(&Tx{exec: executor{q: sqlTx, dialect: c.dialect, inTx: true}, client: c}); err != nil {
		return err
	}

	done = true
	if err := sqlTx.Commit(); err != nil {
		return c.dialect.mapError(err, "failed to commit transaction")
	}
	return nil
}
