package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/investmatch/internal/db"
)

// HReplace deletes key and writes fields inside one MULTI/EXEC block,
// so stale fields from a previous version never survive.
func (s *Store) HReplace(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return &db.Error{Op: db.OpReplace, Err: errors.New("no fields")}
	}

	results := s.client.DoMulti(ctx,
		s.b().Multi().Build(),
		s.b().Del().Key(key).Build(),
		s.hsetCmd(key, fields),
		s.b().Exec().Build(),
	)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpReplace, Err: fmt.Errorf("key %s step %d: %w", key, i, err)}
		}
	}

	// Commands that fail inside the transaction surface as EXEC reply elements.
	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		return &db.Error{Op: db.OpReplace, Err: fmt.Errorf("key %s exec reply: %w", key, err)}
	}
	for i := range replies {
		if err := replies[i].Error(); err != nil {
			return &db.Error{Op: db.OpReplace, Err: fmt.Errorf("key %s queued command %d: %w", key, i, err)}
		}
	}
	return nil
}

func (s *Store) hsetCmd(key string, fields map[string]string) rueidis.Completed {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	return cmd.Build()
}
