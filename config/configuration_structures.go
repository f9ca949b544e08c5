package config

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// KeysConfig : пути к асимметричной паре ключей для подписи токенов
// Приватный ключ хранится в PKCS#8 PEM, зашифрованный паролем
type KeysConfig struct {
	PrivateKeyPath     string `yaml:"private_key_path"`
	PublicKeyPath      string `yaml:"public_key_path"`
	PrivateKeyPassword string `yaml:"private_key_password"`
}

// EncryptionConfig : ключ для шифрования email и телефона (base64, 32 байта)
type EncryptionConfig struct {
	Key string `yaml:"key"`
}

type JWTConfig struct {
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
