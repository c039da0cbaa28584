package config

const (
	defaultStagingDir           = "~/.local/share/mediaproxy/staging"
	defaultOutputDir            = "~/mediaproxy/proxies"
	defaultLogDir               = "~/.local/share/mediaproxy/logs"
	defaultAPIBind              = "127.0.0.1:7519"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultResolveScriptingAddr = "127.0.0.1:15000"
	defaultCapabilityTTL        = 30
	defaultValidationTimeout    = 20
	defaultDeliverVideoCodec    = "h264"
	defaultDeliverAudioCodec    = "aac"
	defaultDeliverContainer     = "mp4"
	defaultNamingTemplate       = "{source}_proxy"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Engines: Engines{
			FFmpegBinary:         defaultFFmpegBinary,
			FFprobeBinary:        defaultFFprobeBinary,
			ResolveScriptingAddr: defaultResolveScriptingAddr,
			CapabilityTTL:        defaultCapabilityTTL,
		},
		Preview: Preview{
			ValidationTimeout: defaultValidationTimeout,
		},
		Deliver: Deliver{
			VideoCodec:     defaultDeliverVideoCodec,
			AudioCodec:     defaultDeliverAudioCodec,
			Container:      defaultDeliverContainer,
			NamingTemplate: defaultNamingTemplate,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
