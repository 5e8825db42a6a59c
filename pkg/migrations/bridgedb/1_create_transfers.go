package bridgedb

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/zero-tech/zchain-bridge/pkg/store"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.NewCreateTable().
				Model((*store.TransferDao)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}

			if _, err := db.NewCreateIndex().
				Model((*store.TransferDao)(nil)).
				Index("idx_transfers_flow_id").
				Column("flow_id").
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			if _, err := db.NewCreateIndex().
				Model((*store.TransferDao)(nil)).
				Index("idx_transfers_tx_hash").
				Column("tx_hash").
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			if _, err := db.NewCreateIndex().
				Model((*store.TransferDao)(nil)).
				Index("idx_transfers_source_wallet").
				Column("source_wallet").
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewDropTable().
				Model((*store.TransferDao)(nil)).
				IfExists().
				Exec(ctx)
			return err
		},
	)
}
