// Package matrix connects the habit bot to Matrix rooms.
//
// Each room is one owner: habits started in a room belong to that room.
// The transport logs in with a password, joins rooms it is invited to,
// and hands every new text message to the bot as plain text. Replies are
// written in markdown and sent with an HTML rendering. Menus become
// numbered lists answered by number.
//
// End-to-end encryption is enabled when a recovery key is configured.
// The crypto state lives in a per-user SQLite file under the data
// directory and is recreated when the homeserver hands out a new device.
package matrix
