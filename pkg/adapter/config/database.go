// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/momeni/expertise/pkg/adapter/db/postgres"
	"github.com/momeni/expertise/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/expertise/pkg/adapter/hash/scram"
	"github.com/momeni/expertise/pkg/core/log"
	"github.com/momeni/expertise/pkg/core/repo"
	scrami "github.com/momeni/expertise/pkg/core/scram"
)

// Database contains the database related configuration settings.
type Database struct {
	Host    string // domain name or IP address of the DBMS server
	Port    int    // port number of the DBMS server
	Name    string // database name, like expertise
	PassDir string `yaml:"pass-dir"` // path of the passwords dir

	// RoleSuffix specifies a possibly empty suffix for the database
	// role names. Normally, repo.AdminRole and repo.NormalRole roles
	// are used. Parallel test cases may create non-colliding roles in
	// one database cluster by using a unique suffix per test.
	RoleSuffix repo.Role `yaml:"role-suffix,omitempty"`

	// AuthMethod specifies how role passwords are hashed before being
	// stored in the database. Only scram-sha-1 and scram-sha-256 are
	// supported and scram-sha-256 is the default value.
	AuthMethod string `yaml:"auth-method,omitempty"`

	// URL, if set, is used for connecting with the normal role instead
	// of the pass-dir contents. It is usually given by the DATABASE_URL
	// environment variable in containerized deployments.
	URL string `yaml:"url,omitempty"`

	// hasher is instantiated based on the AuthMethod and is passed to
	// the Schema repo instances by the NewSchemaRepo method.
	hasher scrami.Hasher `yaml:"-"`
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `c` settings.
// This method and the following ones make Config a schemauc.Settings.
func (c *Config) ConnectionPool(
	ctx context.Context, r repo.Role,
) (repo.Pool, error) {
	p, err := c.Database.ConnectionPool(ctx, r)
	if err != nil {
		return nil, fmt.Errorf(
			"connecting to %s:%d/%s as %s: %w",
			c.Database.Host, c.Database.Port, c.Database.Name, r, err,
		)
	}
	return p, nil
}

// NewSchemaRepo instantiates a fresh Schema repository.
func (c *Config) NewSchemaRepo() repo.Schema {
	return c.Database.NewSchemaRepo()
}

// SchemaInitializer creates a repo.SchemaInitializer which creates the
// expertise tables and seeds the questions catalog within tx.
func (c *Config) SchemaInitializer(tx repo.Tx) (
	repo.SchemaInitializer, error,
) {
	return schemarp.NewInitializer(tx), nil
}

// RenewPasswords delegates to the Database.RenewPasswords method.
func (c *Config) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	return c.Database.RenewPasswords(ctx, change, roles...)
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `d` settings.
// When d.URL is set and r is the normal role, it is used directly.
// Otherwise, the .pgpass file in the d.PassDir folder is checked
// which should conform with the pgpass format with lines like this:
//
//	host:port:dbname:role:password
//
// If no connection can be established, passwords might have been
// updated during an interrupted RenewPasswords call. So the .pgpass.new
// file in the same folder is tried too and on success, it is moved
// over the .pgpass file.
//
// The `d.RoleSuffix` will be appended to the given `r` role name too.
func (d Database) ConnectionPool(
	ctx context.Context, r repo.Role,
) (repo.Pool, error) {
	if d.URL != "" && r == repo.NormalRole {
		p, err := postgres.NewPool(ctx, d.URL)
		if err != nil {
			return nil, fmt.Errorf("using the database url: %w", err)
		}
		return p, nil
	}
	path := filepath.Join(d.PassDir, ".pgpass")
	u, err := d.ConnectionURL(r, path)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", path, err)
	}
	p, err := postgres.NewPool(ctx, u)
	if err == nil {
		return p, nil
	}
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	log.Warn(
		ctx, "cannot connect, trying the new pass-file",
		log.Err("err", err),
		slog.String("pass-file", newPath),
	)
	u, err = d.ConnectionURL(r, newPath)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", newPath, err)
	}
	p, err = postgres.NewPool(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("can use neither pass-file: %w", err)
	}
	if err = os.Rename(newPath, path); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("os.Rename: %w", err)
	}
	return p, nil
}

// ConnectionURL returns the postgresql connection URL of the `r` role
// (after appending d.RoleSuffix), with its password taken from the
// pgpass formatted `path` file. Empty and `#`-commented lines of the
// pass-file are ignored.
func (d Database) ConnectionURL(
	r repo.Role, path string,
) (string, error) {
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	r = r + d.RoleSuffix
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, r)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, prfx) {
			pass = line[len(prfx):]
			break
		}
	}
	if pass == "" {
		return "", fmt.Errorf("no matching password line")
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(string(r), pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

// NewSchemaRepo instantiates a fresh Schema repository which suffixes
// role names by d.RoleSuffix and hashes passwords based on the
// d.AuthMethod. The ValidateAndNormalize method must be called first.
func (d Database) NewSchemaRepo() repo.Schema {
	return schemarp.New(d.RoleSuffix, d.hasher)
}

// RenewPasswords generates new secure passwords for the given roles
// and records them in the .pgpass.new file of the `d.PassDir` folder.
// Then it calls `change` in order to update the passwords of those
// `roles` in the database too. Once the `change` transaction commits,
// the returned finalizer moves .pgpass.new over the .pgpass file.
//
// The `d.RoleSuffix` will be appended to the given role names too.
func (d Database) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	passwords := make([]string, len(roles))
	b := make([]byte, 16) // 128 bits
	enc := base64.RawStdEncoding
	p := make([]byte, enc.EncodedLen(len(b)))
	prfx := fmt.Sprintf("%s:%d:%s", d.Host, d.Port, d.Name)
	lines := make([]string, len(roles))
	for i, r := range roles {
		if _, err = rand.Read(b); err != nil {
			return nil, fmt.Errorf("rand.Read for i=%d: %w", i, err)
		}
		enc.Encode(p, b)
		passwords[i] = string(p)
		lines[i] = fmt.Sprintf(
			"%s:%s:%s\n", prfx, r+d.RoleSuffix, passwords[i],
		)
	}
	if err = os.MkdirAll(d.PassDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating %q dir: %w", d.PassDir, err)
	}
	orgPath := filepath.Join(d.PassDir, ".pgpass")
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	err = os.WriteFile(newPath, []byte(strings.Join(lines, "")), 0o600)
	if err != nil {
		return nil, fmt.Errorf("writing %q file: %w", newPath, err)
	}
	if err = change(ctx, roles, passwords); err != nil {
		return nil, fmt.Errorf("passwords change callback: %w", err)
	}
	return func() error {
		return os.Rename(newPath, orgPath)
	}, nil
}

// ValidateAndNormalize checks the d settings and instantiates the
// password hasher of its AuthMethod.
func (d *Database) ValidateAndNormalize() error {
	switch am := d.AuthMethod; am {
	case "scram-sha-1":
		d.hasher = scram.SHA1()
	case "":
		d.AuthMethod = "scram-sha-256"
		fallthrough
	case "scram-sha-256":
		d.hasher = scram.SHA256()
	default:
		return fmt.Errorf(
			"unsupported database authentication method: %q", am,
		)
	}
	if d.URL == "" && (d.Host == "" || d.Name == "" || d.Port <= 0) {
		return errors.New("database host, port or name is missing")
	}
	if d.PassDir == "" {
		d.PassDir = "."
	}
	return nil
}
