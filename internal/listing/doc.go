// Package listing discovers queues through the management API and renders
// inventory views filtered by virtual host and name substring.
package listing
