// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/momeni/expertise/pkg/core/usecase/schemauc"
	"github.com/spf13/cobra"
)

// credsRenewalMessage describes the password renewal side effect which
// is shared by the init-dev and init-prod commands.
const credsRenewalMessage = `The admin role password is read from the .pgpass file of the pass-dir
and both admin and normal role passwords are renewed. New passwords are
written in the .pgpass.new file first and moved over .pgpass after the
database transaction commits.`

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For fresh installation in a development or production environment,
the init-dev or init-prod may be used.`,
}

var initDevCmd = &cobra.Command{
	Use:   "init-dev",
	Short: "Initialize database contents with development suitable data",
	Long: `Initialize database contents with development suitable data.
The ` + schemauc.SchemaName + ` schema is dropped (if it exists) and
created again with the tables and a small questions catalog, including
an inactive question. The database connection information are read from
the config file.
` + credsRenewalMessage,
	RunE: initDB(func(ctx context.Context, uc *schemauc.InitDBUseCase) error {
		return uc.InitDev(ctx)
	}),
	Args: cobra.NoArgs,
}

var initProdCmd = &cobra.Command{
	Use:   "init-prod",
	Short: "Initialize database contents with production suitable data",
	Long: `Initialize database contents with production suitable data.
The ` + schemauc.SchemaName + ` schema is dropped (if it exists) and
created again with the tables and the production questions catalog.
The database connection information are read from the config file.
` + credsRenewalMessage,
	RunE: initDB(func(ctx context.Context, uc *schemauc.InitDBUseCase) error {
		return uc.InitProd(ctx)
	}),
	Args: cobra.NoArgs,
}

func initDB(
	run func(ctx context.Context, uc *schemauc.InitDBUseCase) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		uc := schemauc.NewInitDB(c)
		if err = run(cmd.Context(), uc); err != nil {
			return fmt.Errorf("initializing DB: %w", err)
		}
		return nil
	}
}

func init() {
	dbCmd.AddCommand(initDevCmd, initProdCmd)
	rootCmd.AddCommand(dbCmd)
}
