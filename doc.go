/*
Package main provides odooctl, a CLI tool for operating a docker compose
based Odoo stack.

Usage:

	odooctl [command]

Available Commands:

	db              Database utilities (list, drop)
	create-backup   Create a backup of the database and filestore
	restore-backup  Restore a database and filestore from a backup
	update-module   Update Odoo modules inside the running container
	manage-user     Manage database users
	sh              Open a shell in a project container
	ps              List running containers for this project
	build           Build/rebuild Docker images for the project
	requirements    Install Python dependencies inside the Odoo container
	pgadmin         Open PgAdmin in your browser
	wait-db         Wait for the PostgreSQL container to accept connections
	clone-addons    Clone addon repositories and update addons_path in odoo.conf
	odools          Odoo LS config utilities (init, sync, make)

Examples:

	# Back up the production database and its filestore
	odooctl create-backup -d prod

	# Restore the newest prod backup into a scratch database
	odooctl restore-backup -d prod --to prod_test

	# Update a module without tailing the logs
	odooctl update-module -d prod -m sale --stop-after-init

	# Clone the addon repositories from addons_repos.toml and extend
	# addons_path in odoo.conf accordingly
	odooctl clone-addons

Commands locate the project root by walking up from the current
directory until a compose.yaml is found; the .env file next to it
supplies PROJECT_NAME, POSTGRES_USER and the other settings.
*/
package main
