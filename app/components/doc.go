// Package components holds the application's widgets.
//
// LikeButton is a two-state toggle: it starts as a "Like" button and, once
// clicked, renders the text "You liked this." for the rest of its life.
package components
