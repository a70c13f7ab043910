package main

type Config struct {
	Host                 string `env:"HOST,default=0.0.0.0"`
	Port                 int    `env:"PORT,default=8001"`
	LogLevel             string `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath       string `env:"BADGER_FILEPATH,required=true"`
	JWTSecret            string `env:"JWT_SECRET,required=true"`
	ConnectionBufferSize int    `env:"CONNECTION_BUFFER_SIZE,default=256"`
	PersistQueueSize     int    `env:"PERSIST_QUEUE_SIZE,default=1024"`
}
