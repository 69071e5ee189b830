// Package likes records like events produced when a LikeButton flips to its
// liked state.
//
// Recorders can be combined: Multi fans one event out to several backends and
// Async moves recording off the session event loop.
//
//	rec := likes.NewAsync(likes.Multi(
//	    likes.NewRedisCounter(redisClient),
//	    publisher,
//	    likes.NewGormLedger(db),
//	), likes.AsyncConfig{}, logger)
//	defer rec.Close()
package likes
