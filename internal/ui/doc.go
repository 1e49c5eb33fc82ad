// Package ui renders console tables for queue listings and migration plans.
package ui
