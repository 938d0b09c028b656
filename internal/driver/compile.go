package driver

import (
	"context"

	"coffeeify/internal/source"
)

// Compile compiles content as the file at path, through the cache, using
// the driver's current settings.
func (d *Driver) Compile(ctx context.Context, path string, content []byte) (string, error) {
	art, err := d.GetOrCompile(ctx, source.NewUnit(path, content), d.OptionsFor(path))
	if err != nil {
		return "", err
	}
	return art.Code, nil
}

// CompileAsync runs Compile in a new goroutine and reports through done,
// which is called exactly once.
func (d *Driver) CompileAsync(ctx context.Context, path string, content []byte, done func(code string, err error)) {
	go func() {
		done(d.Compile(ctx, path, content))
	}()
}
