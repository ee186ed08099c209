// Package gitpath contains consts and methods to work with paths inside
// the .re_flogged directory
package gitpath

import "os"

// .re_flogged/ files and directories
const (
	DotGitPath      = ".re_flogged"
	ConfigPath      = "config"
	DescriptionPath = "description"
	HEADPath        = "HEAD"
	IndexPath       = "index"
	ObjectsPath     = "objects"
	ObjectsInfoPath = ObjectsPath + string(os.PathSeparator) + "info"
	ObjectsPackPath = ObjectsPath + string(os.PathSeparator) + "pack"
	RefsPath        = "refs"
	RefsTagsPath    = RefsPath + "/tags"
	RefsHeadsPath   = RefsPath + "/heads"
	HooksPath       = "hooks"
	InfoPath        = "info"
)
