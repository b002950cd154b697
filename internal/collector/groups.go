package collector

func init() {
	RegisterGroup("group:misc", "Antivirus products and AMSI providers",
		"antivirus", "amsiproviders")
	RegisterGroup("group:system", "Operating system, last shutdown and environment",
		"osinfo", "lastshutdown", "environment")
	RegisterGroup("group:all", "System and security collectors",
		"group:system", "group:misc")
	RegisterGroup("group:inventory", "Processes, volumes and network interfaces of this machine",
		"processes", "disks", "netinterfaces")
}
