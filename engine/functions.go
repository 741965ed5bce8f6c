package engine

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/crypto/sha3"
	sqlite "modernc.org/sqlite"
)

var registerBuiltinsOnce sync.Once
var registerBuiltinsErr error

// RegisterBuiltins registers the bundled scalar SQL functions with the driver:
// uuid(), uuid_str(X), uuid_blob(X) and sha3(X). Registration is global and
// applies to connections opened after the call; repeated calls are no-ops.
// The db argument is accepted for call-site symmetry and may be nil.
func RegisterBuiltins(_ *sql.DB) error {
	registerBuiltinsOnce.Do(func() {
		var errs *multierror.Error
		// uuid() is random per call and so must not be marked deterministic.
		if err := sqlite.RegisterScalarFunction("uuid", 0, uuidImpl); err != nil {
			errs = multierror.Append(errs, err)
		}
		if err := sqlite.RegisterDeterministicScalarFunction("uuid_str", 1, uuidStrImpl); err != nil {
			errs = multierror.Append(errs, err)
		}
		if err := sqlite.RegisterDeterministicScalarFunction("uuid_blob", 1, uuidBlobImpl); err != nil {
			errs = multierror.Append(errs, err)
		}
		if err := sqlite.RegisterDeterministicScalarFunction("sha3", 1, sha3Impl); err != nil {
			errs = multierror.Append(errs, err)
		}
		registerBuiltinsErr = errs.ErrorOrNil()
	})
	return registerBuiltinsErr
}

func uuidImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("uuid: expected 0 arguments, got %d", len(args))
	}
	return uuid.NewString(), nil
}

// asUUID accepts a 16-byte blob or a textual representation.
func asUUID(arg driver.Value) (uuid.UUID, error) {
	switch v := arg.(type) {
	case []byte:
		u, err := uuid.FromBytes(v)
		if err != nil {
			return uuid.Nil, fmt.Errorf("uuid: invalid blob: %w", err)
		}
		return u, nil
	case string:
		u, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, fmt.Errorf("uuid: invalid text %q: %w", v, err)
		}
		return u, nil
	default:
		return uuid.Nil, fmt.Errorf("uuid: unsupported argument type %T", arg)
	}
}

func uuidStrImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("uuid_str: expected 1 argument, got %d", len(args))
	}
	if args[0] == nil {
		return nil, nil
	}
	u, err := asUUID(args[0])
	if err != nil {
		return nil, err
	}
	return u.String(), nil
}

func uuidBlobImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("uuid_blob: expected 1 argument, got %d", len(args))
	}
	if args[0] == nil {
		return nil, nil
	}
	u, err := asUUID(args[0])
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), u[:]...), nil
}

func sha3Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("sha3: expected 1 argument, got %d", len(args))
	}
	var data []byte
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil, fmt.Errorf("sha3: unsupported argument type %T; want TEXT or BLOB", args[0])
	}
	sum := sha3.Sum256(data)
	return append([]byte(nil), sum[:]...), nil
}
