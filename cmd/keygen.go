package main

import (
	"fmt"
	"os"

	"task-tracker/internal/security"

	"github.com/spf13/cobra"
)

func newKeygenCommand() *cobra.Command {
	var (
		keyType     string
		privatePath string
		publicPath  string
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Сгенерировать пару ключей подписи и ключ шифрования полей",
		Long: "Записывает зашифрованный паролем приватный ключ (PKCS#8) и публичный ключ (PKIX).\n" +
			"Пароль берётся из PRIVATE_KEY_PASSWORD. Ключ шифрования выводится в stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("PRIVATE_KEY_PASSWORD")
			if password == "" {
				return fmt.Errorf("задайте пароль приватного ключа в PRIVATE_KEY_PASSWORD")
			}

			privatePEM, publicPEM, err := security.GenerateKeyPair(keyType, password)
			if err != nil {
				return err
			}
			if err := writeNew(privatePath, privatePEM, 0o600); err != nil {
				return err
			}
			if err := writeNew(publicPath, publicPEM, 0o644); err != nil {
				return err
			}

			encryptionKey, err := security.GenerateEncryptionKey()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ENCRYPTION_KEY=%s\n", encryptionKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&keyType, "type", security.KeyTypeRSA, "тип ключа: rsa, ecdsa или ed25519")
	cmd.Flags().StringVar(&privatePath, "private", "private_key.pem", "куда записать приватный ключ")
	cmd.Flags().StringVar(&publicPath, "public", "public_key.pem", "куда записать публичный ключ")
	return cmd
}

// writeNew не перезаписывает существующие ключи
func writeNew(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("не удалось создать %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("не удалось записать %s: %w", path, err)
	}
	return f.Close()
}
