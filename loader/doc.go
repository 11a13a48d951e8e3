// Package loader implements the host side of the SAHARA protocol for loading
// firmware into a Qualcomm modem and servicing its EFS sync requests.
//
// # Overview
//
// The modem boot ROM leads the conversation. The loader answers:
//   - Hello handshakes, echoing version, mode and appended data
//   - Data requests, with slices of the image files in the image table
//   - Data end requests, with a data end response and an ack check
//   - Memory debug requests after boot, by pulling the EFS region named in
//     the modem's memory table and handing it to a Sink
//
// # Basic Usage
//
// Transfer all images over an open channel:
//
//	port, err := serial.Open(serial.ConnectProfile("/dev/ttyUSB0"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	l := loader.New(port, loader.WithImageSource(images.NewFileSource("/")))
//	if err := l.TransferImages(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// After the modem booted, service memory debug requests:
//
//	l := loader.New(port, loader.WithSink(efs.NewDirSink(efs.DefaultDir)))
//	session := &loader.DebugSession{}
//	for {
//	    if err := l.ServiceMemoryDebug(ctx, session); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Boot runs the whole sequence, including waking the modem:
//
//	b := &loader.Boot{Device: dev, Open: openPort, Options: opts}
//	err := b.Run(ctx)
//
// # Configuration Options
//
//	l := loader.New(port,
//	    loader.WithLogger(myLogger),
//	    loader.WithProgressCallback(progressFunc),
//	    loader.WithImageSource(src),
//	    loader.WithSink(sink),
//	    loader.WithChunkTimeout(500*time.Millisecond),
//	    loader.WithChunkAttempts(5),
//	)
//
// # Error Handling
//
// Every error returned by the loader is a *PhaseError naming the phase
// (hello, data transfer, EFS sync, reset, ...). The underlying cause is one of:
//   - protocol.FramingError: short read or write, the framing is lost
//   - protocol.UnexpectedCommandError: the modem sent the wrong command
//   - protocol.ModeMismatchError: the hello asked for an unexpected mode
//   - protocol.SizeLimitError: a request exceeded protocol.MaxSendChunk
//   - images.UnknownImageError: the modem asked for an unknown image
//   - AccessDeniedError: the memory table named a file outside the allow-list
//   - PeerStatusError: the modem reported a failure status
//   - TimeoutError: EFS data did not arrive in time (after all retries)
//   - LocalIOError: an image file or the sink failed
//
// All of them are fatal to the conversation. The only local recovery is the
// bounded retry of EFS region reads.
//
// # Hardware Independence
//
// The loader does not open devices. It works on any Channel: an
// io.ReadWriter with a WaitReadable method. Package serial provides one
// for Linux ttys.
package loader
