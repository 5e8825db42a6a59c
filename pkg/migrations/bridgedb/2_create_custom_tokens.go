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
				Model((*store.CustomTokenDao)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}

			// Upserts key on (chain_id, address)
			_, err := db.NewCreateIndex().
				Model((*store.CustomTokenDao)(nil)).
				Index("idx_custom_tokens_chain_address").
				Column("chain_id", "address").
				Unique().
				IfNotExists().
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewDropTable().
				Model((*store.CustomTokenDao)(nil)).
				IfExists().
				Exec(ctx)
			return err
		},
	)
}
