// Command hash-password prints a bcrypt hash for seeding the admins table.
//
//	hash-password 'S3cret!'
//	echo 'S3cret!' | hash-password
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Cheertaboi/coupon-management-service/internal/auth"
)

func main() {
	password := ""
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("read password: %v", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		log.Fatal("empty password")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
