// Package io attaches external device processes to an XJX machine.
//
// A device is any program that speaks the slave side of the attachment
// protocol over two named pipes: it opens its "in" pipe for reading, its
// "out" pipe for writing, and announces the window of its own address
// space it is willing to share. The master maps that window onto a range of
// its RAM and, from then on, RAM stores inside the window are forwarded to
// the device while device messages are applied to the mapped RAM.
//
// Every message is a frame: one length byte followed by that many bytes.
package io
