// Package panel drives a Plesk control panel's file manager through its
// web interface: the login form, the session cookie, the forgery
// protection token and the smb/file-manager endpoints.
//
// The panel has no documented API; this package talks to the same
// endpoints the browser UI uses and scrapes what little HTML it has to.
// It is deliberately the only package in the module that knows about the
// panel's markup and URLs, so a panel upgrade that changes either touches
// nothing else.
//
// # Usage
//
//	client, err := panel.New(&panel.Config{
//		BaseURL:  "https://example.com:8443/",
//		Username: "admin",
//		Password: "secret",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	listing, err := client.ListDir(ctx, "httpdocs")
//
// Login happens lazily on the first call. When the panel invalidates the
// session mid-run, the failed call is retried once after a fresh login.
//
// Several endpoints resolve plain file names against a server-side
// working directory; ListDir doubles as the chdir primitive that sets it.
package panel
