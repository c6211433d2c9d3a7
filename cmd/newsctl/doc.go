// Command newsctl runs the AI news agent's daily crawl and digest and
// deploys the agent to its remote host.
//
// The daily run invokes the news tool's crawl and digest subcommands from
// the project root, mirroring their combined output to the terminal and to
// logs/digest_<timestamp>.log. Deploy rsyncs the project to the remote host,
// installs dependencies, and restarts the systemd service over SSH.
//
// Settings come from a TOML file (see "newsctl config init"), overridden by
// NEWSCTL_* environment variables and then by flags.
package main
