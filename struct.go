package sparrow

type Setting struct {
	Version   string               `yaml:"version"`
	Author    string               `yaml:"author"`
	Name      string               `yaml:"name"`
	Env       string               `yaml:"env"`
	EnvConfig map[string]EnvConfig `yaml:"envConfig"`
}

type EnvConfig struct {
	LogLevel string                        `yaml:"logLevel"`
	Limit    LimitSetting                  `yaml:"limit"`
	Metrics  MetricsSetting                `yaml:"metrics"`
	Sql      map[string]SqlSetting         `yaml:"sql"`
	Redis    map[string][]RedisSettingItem `yaml:"redis"`
	Mongodb  map[string]MongodbSetting     `yaml:"mongodb"`
}

type LimitSetting struct {
	Rps   float64 `yaml:"rps"`   //每秒允许的请求数, <=0 不限流
	Burst int     `yaml:"burst"` //允许的突发请求数
}

type MetricsSetting struct {
	Addr string `yaml:"addr"` //指标服务监听地址, 空则不启动
}

type SqlSetting struct {
	Master []SqlSettingItem `yaml:"master"`
	Slave  []SqlSettingItem `yaml:"slave"`
}

type SqlSettingItem struct {
	DriverName string `yaml:"driverName"`
	Host       string `yaml:"host"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Database   string `yaml:"database"`
	Port       int    `yaml:"port"`
}

type RedisSettingItem struct {
	Host     string `yaml:"host"`
	Password string `yaml:"password"`
	Port     int    `yaml:"port"`
}

type MongodbSetting struct {
	Master []MongodbSettingItem `yaml:"master"`
	Slave  []MongodbSettingItem `yaml:"slave"`
}

type MongodbSettingItem struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Port     int    `yaml:"port"`
}
